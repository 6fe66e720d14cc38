package models

import (
	"fmt"
	"time"
)

// Status is the position of a vehicle in the approval workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

const (
	// UnknownOwner is substituted when a registration carries no owner name.
	UnknownOwner = "Unknown Owner"
	// PlaceholderImageURL is substituted when a registration carries no photo.
	PlaceholderImageURL = "https://via.placeholder.com/150"
	// MinYear is the oldest accepted model year.
	MinYear = 1900
)

// Vehicle is a registered vehicle subject to admin verification.
//
// VerificationDate is nil while Status is pending and set once the vehicle
// is approved or rejected.
type Vehicle struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	PlateNumber      string     `json:"plateNumber"`
	Make             string     `json:"make"`
	Model            string     `json:"model"`
	Year             int        `json:"year"`
	Color            string     `json:"color"`
	VIN              string     `json:"vin"`
	Status           Status     `json:"status"`
	RegistrationDate time.Time  `json:"registrationDate"`
	VerificationDate *time.Time `json:"verificationDate,omitempty"`
	ImageURL         string     `json:"imageUrl,omitempty"`
	Owner            string     `json:"owner,omitempty"`
	Documents        []string   `json:"documents,omitempty"`
}

// VehicleInput carries the caller-supplied fields of a registration.
type VehicleInput struct {
	UserID      string
	PlateNumber string
	Make        string
	Model       string
	Year        int
	Color       string
	VIN         string
	ImageURL    string
	Owner       string
	Documents   []string
}

// ValidYear reports whether year lies in [MinYear, now.Year()+1].
func ValidYear(year int, now time.Time) bool {
	return year >= MinYear && year <= now.Year()+1
}

// NewVehicle builds a pending vehicle from in, applying the owner and image
// defaults.
func NewVehicle(id string, in VehicleInput, now time.Time) Vehicle {
	v := Vehicle{
		ID:               id,
		UserID:           in.UserID,
		PlateNumber:      in.PlateNumber,
		Make:             in.Make,
		Model:            in.Model,
		Year:             in.Year,
		Color:            in.Color,
		VIN:              in.VIN,
		Status:           StatusPending,
		RegistrationDate: now,
		ImageURL:         in.ImageURL,
		Owner:            in.Owner,
	}
	if v.Owner == "" {
		v.Owner = UnknownOwner
	}
	if v.ImageURL == "" {
		v.ImageURL = PlaceholderImageURL
	}
	if len(in.Documents) > 0 {
		v.Documents = append([]string(nil), in.Documents...)
	}
	return v
}

// Clone returns a copy that shares no mutable state with v.
func (v Vehicle) Clone() Vehicle {
	c := v
	if v.VerificationDate != nil {
		t := *v.VerificationDate
		c.VerificationDate = &t
	}
	if v.Documents != nil {
		c.Documents = append([]string(nil), v.Documents...)
	}
	return c
}

// Stats aggregates a set of vehicles.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
	ByMake   map[string]int
	ByYear   map[string]int
}
