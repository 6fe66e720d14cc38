package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/models"
)

const dateLayout = "2006-01-02 15:04"

func printVehicles(w io.Writer, vs []models.Vehicle) error {
	if len(vs) == 0 {
		_, err := fmt.Fprintln(w, "No vehicles")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLATE\tVEHICLE\tYEAR\tSTATUS\tOWNER")
	for _, v := range vs {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\t%s\n", v.ID, v.PlateNumber, v.Make, v.Model, v.Year, v.Status, v.Owner)
	}
	return tw.Flush()
}

func printVehicle(w io.Writer, v models.Vehicle) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", v.ID},
		{"Plate", v.PlateNumber},
		{"Make", v.Make},
		{"Model", v.Model},
		{"Year", fmt.Sprint(v.Year)},
		{"Color", v.Color},
		{"VIN", v.VIN},
		{"Owner", v.Owner},
		{"Status", string(v.Status)},
		{"Registered", formatDate(v.RegistrationDate)},
	}
	if v.VerificationDate != nil {
		rows = append(rows, [2]string{"Verified", formatDate(*v.VerificationDate)})
	}
	if v.ImageURL != "" {
		rows = append(rows, [2]string{"Image", v.ImageURL})
	}
	if len(v.Documents) > 0 {
		rows = append(rows, [2]string{"Documents", strings.Join(v.Documents, ", ")})
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func printStats(w io.Writer, st models.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", st.Total)
	fmt.Fprintf(tw, "Pending:\t%d\n", st.Pending)
	fmt.Fprintf(tw, "Approved:\t%d\n", st.Approved)
	fmt.Fprintf(tw, "Rejected:\t%d\n", st.Rejected)
	writeTally(tw, "By make", st.ByMake)
	writeTally(tw, "By year", st.ByYear)
	return tw.Flush()
}

func writeTally(w io.Writer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\t\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", k, m[k])
	}
}

func formatDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}
