package model

type Site struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type Mechanic struct {
	ID          int    `json:"id"`
	Site        int    `json:"site"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type ServiceType struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type ServiceCategory struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Order        int           `json:"order"`
	ServiceTypes []ServiceType `json:"service_types,omitempty"`
}

type Appointment struct {
	ID              int    `json:"id"`
	Customer        int    `json:"customer"`
	Vehicle         int    `json:"vehicle"`
	Site            int    `json:"site"`
	Mechanic        *int   `json:"mechanic"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	ServiceRequest  *int   `json:"service_request"`
}
