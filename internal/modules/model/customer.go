package model

type Customer struct {
	ID                      int     `json:"id"`
	FirstName               string  `json:"first_name"`
	LastName                string  `json:"last_name"`
	Email                   *string `json:"email,omitempty"`
	PhoneNumber             string  `json:"phone_number"`
	ReceiveServiceReminders bool    `json:"receive_service_reminders"`
}

func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Vehicle struct {
	ID           int    `json:"id"`
	VehicleType  string `json:"vehicle_type"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Customer     int    `json:"customer"`
	LicensePlate string `json:"license_plate"`
}
