package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/models"
)

var getInt = GetInt
var getLines = GetLines

// AddVehicle collects the registration fields and registers a vehicle for
// the current user.
func (a *App) AddVehicle(ctx context.Context) error {
	acc, ok := a.identity.CurrentUser()
	if !ok {
		return errNotLoggedIn
	}

	in := models.VehicleInput{UserID: acc.ID}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter plate number", &in.PlateNumber},
		{"Enter make", &in.Make},
		{"Enter model", &in.Model},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	year, err := getInt(a.reader, "Enter year", a.out)
	if err != nil {
		return err
	}
	in.Year = year

	fields = []struct {
		prompt string
		dst    *string
	}{
		{"Enter color", &in.Color},
		{"Enter VIN", &in.VIN},
		{"Enter owner name (optional)", &in.Owner},
		{"Enter image URL (optional)", &in.ImageURL},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	docs, err := getLines(a.reader, "Enter document names, one per line", a.out)
	if err != nil {
		return err
	}
	in.Documents = docs

	if in.Make == "" || in.Model == "" || in.Color == "" || in.VIN == "" {
		return fmt.Errorf("%w: make, model, color and VIN are required", common.ErrValidation)
	}

	v, err := a.vehicles.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (id %s), awaiting verification\n", v.PlateNumber, v.ID)
	return nil
}

// List reloads the vehicles visible to the current user and prints them.
func (a *App) List(ctx context.Context) error {
	acc, ok := a.identity.CurrentUser()
	if !ok {
		return errNotLoggedIn
	}
	vs, err := a.loadWorkingSet(ctx, acc)
	if err != nil {
		return err
	}
	return printVehicles(a.out, vs)
}

// ListAll reloads and prints every vehicle.
func (a *App) ListAll(ctx context.Context) error {
	vs, err := a.vehicles.ListAll(ctx)
	if err != nil {
		return err
	}
	return printVehicles(a.out, vs)
}

// Pending prints the pending vehicles of the working set.
func (a *App) Pending(ctx context.Context) error {
	return printVehicles(a.out, a.vehicles.FindPending())
}

// Show prints one vehicle of the working set.
func (a *App) Show(ctx context.Context, id string) error {
	v, ok := a.vehicles.FindByID(id)
	if !ok {
		return fmt.Errorf("%w: vehicle %s", common.ErrNotFound, id)
	}
	return printVehicle(a.out, v)
}

// Search prints working-set vehicles whose plate contains fragment.
func (a *App) Search(ctx context.Context, fragment string) error {
	return printVehicles(a.out, a.vehicles.SearchByPlate(fragment))
}

func (a *App) Approve(ctx context.Context, id string) error {
	v, err := a.vehicles.Approve(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s approved\n", v.PlateNumber)
	return nil
}

func (a *App) Reject(ctx context.Context, id string) error {
	v, err := a.vehicles.Reject(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s rejected\n", v.PlateNumber)
	return nil
}

// SetStatus parses "<id> <status>" and moves the vehicle to that status.
func (a *App) SetStatus(ctx context.Context, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return fmt.Errorf("%w: expected <id> <approved|rejected>", common.ErrValidation)
	}
	status, err := models.ParseStatus(fields[1])
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidStatus, err)
	}

	v, err := a.vehicles.SetStatus(ctx, fields[0], status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", v.PlateNumber, v.Status)
	return nil
}

// Stats prints aggregate counts over the working set.
func (a *App) Stats(ctx context.Context) error {
	return printStats(a.out, a.vehicles.Statistics())
}

// Metrics dumps the in-process counters.
func (a *App) Metrics(ctx context.Context) error {
	return a.metrics.WriteText(a.out)
}
