package domain

import (
	"fmt"
	"time"
)

type Location struct {
	Place string `json:"place"`
	City  string `json:"city,omitempty"`
	State string `json:"state"`
}

// Taxi is a role-partitioned trip record. No PDF artifacts, no
// notifications, just structured CRUD.
type Taxi struct {
	ID          int64      `json:"id,string"`
	OwnerID     string     `json:"userId"`
	Role        Role       `json:"role,omitempty"`
	TripDate    time.Time  `json:"tripDate"`
	Pickup      Location   `json:"pickup"`
	Drop        Location   `json:"drop"`
	TripDays    string     `json:"tripDays"`
	Route       []Location `json:"route"`
	VehicleType string     `json:"vehicleType"`
	Amount      string     `json:"amount"`
	Distance    string     `json:"distance"`
	KiloFare    string     `json:"killoFare"`
	UserName    string     `json:"userName,omitempty"`
	IsLocal     bool       `json:"isLocal"`
	CompanyName string     `json:"companyName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type SaveTaxiRequest struct {
	ID          *int64     `json:"id,string,omitempty"`
	TripDate    time.Time  `json:"tripDate"`
	Pickup      Location   `json:"pickup"`
	Drop        Location   `json:"drop"`
	TripDays    string     `json:"tripDays"`
	Route       []Location `json:"route"`
	VehicleType string     `json:"vehicleType"`
	Amount      string     `json:"amount"`
	Distance    string     `json:"distance"`
	KiloFare    string     `json:"killoFare"`
	UserName    string     `json:"userName,omitempty"`
	IsLocal     bool       `json:"isLocal"`
	CompanyName string     `json:"companyName,omitempty"`
}

func (r *SaveTaxiRequest) Validate() error {
	if r.TripDate.IsZero() {
		return fmt.Errorf("tripDate is required")
	}
	if r.Pickup.Place == "" || r.Pickup.State == "" {
		return fmt.Errorf("pickup place and state are required")
	}
	if r.Drop.Place == "" || r.Drop.State == "" {
		return fmt.Errorf("drop place and state are required")
	}
	if r.VehicleType == "" {
		return fmt.Errorf("vehicleType is required")
	}
	if r.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	return nil
}
