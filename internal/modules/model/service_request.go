package model

const (
	StatusDraft      = "Draft"
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ServiceRequest is either a vehicle job ("service") or a walk-in parts sale ("sale").
type ServiceRequest struct {
	ID                 int    `json:"id"`
	DisplayNumber      string `json:"display_number"`
	TransactionType    string `json:"transaction_type"`
	Customer           int    `json:"customer"`
	Vehicle            *int   `json:"vehicle"`
	Site               int    `json:"site"`
	ServiceType        *int   `json:"service_type"`
	ServiceTypeDisplay string `json:"service_type_display,omitempty"`
	Description        string `json:"description"`
	AssignedMechanic   *int   `json:"assigned_mechanic"`
	Status             string `json:"status"`
	// money fields are decimal strings, e.g. "120.00"
	LaborCost string `json:"labor_cost"`
	TotalCost string `json:"total_cost,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ServiceRequestFilter narrows service_request/ listings. Zero values are omitted.
type ServiceRequestFilter struct {
	CustomerID *int
	VehicleID  *int
	MechanicID *int
	PartsOnly  bool
	Page       int
}
