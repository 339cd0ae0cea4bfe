package models

// Appointment mirrors the upstream appointment document.
type Appointment struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`

	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`

	AppointmentType string `json:"appointmentType,omitempty"`
	Duration        string `json:"duration,omitempty"` // e.g. "60 minutes"

	// Date plus time combined, ISO-8601 or bare "2006-01-02" for
	// all-day entries; both forms occur upstream.
	AppointmentDate string `json:"appointmentDate"`

	// scheduled | confirmed | completed | cancelled | no-show
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// AppointmentListResponse is the upstream shape of the today and
// upcoming list endpoints.
type AppointmentListResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	Appointments []Appointment `json:"appointments"`
}

// AppointmentCounts are the summary numbers on the appointments screen.
type AppointmentCounts struct {
	Today     int `json:"today"`
	Confirmed int `json:"confirmed"`
	Scheduled int `json:"scheduled"`
	Upcoming  int `json:"upcoming"`
}

// AppointmentView is the merged view-model the gateway serves: both
// partitions, the full deduplicated list, and the summary counts.
type AppointmentView struct {
	Success  bool              `json:"success"`
	Today    []Appointment     `json:"today"`
	Upcoming []Appointment     `json:"upcoming"`
	All      []Appointment     `json:"all"`
	Counts   AppointmentCounts `json:"counts"`
}

// RescheduleRequest carries the two form fields of the reschedule dialog.
type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
