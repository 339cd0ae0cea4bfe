package models

// Lead is a prospective patient record as the upstream CRM returns it.
// The upstream enforces no schema; every field is optional on the wire.
type Lead struct {
	ID        string `json:"_id,omitempty"`
	PatientID string `json:"patientId,omitempty"`

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	DOB               string `json:"dob,omitempty"`
	Address           string `json:"address,omitempty"`
	InsuranceProvider string `json:"insuranceProvider,omitempty"`

	Source        string `json:"source,omitempty"`
	Priority      string `json:"priority,omitempty"`
	InitialStatus string `json:"initialStatus,omitempty"`
	ReferredBy    string `json:"referredBy,omitempty"`
	InitialNotes  string `json:"initialNotes,omitempty"`

	// Present on leads that already have an appointment attached.
	AppointmentDate string `json:"appointmentDate,omitempty"`
	Status          string `json:"status,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// LeadListResponse covers both upstream list shapes: /doctors/patients
// returns {patients: [...]}, /patient/filter returns {success, data: [...]}.
type LeadListResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Data     []Lead `json:"data,omitempty"`
	Patients []Lead `json:"patients,omitempty"`
}

// Leads returns whichever list the upstream populated.
func (r *LeadListResponse) Leads() []Lead {
	if len(r.Patients) > 0 {
		return r.Patients
	}
	return r.Data
}

// LeadPage is the gateway's paginated view over an already-fetched list.
type LeadPage struct {
	Success    bool   `json:"success"`
	Data       []Lead `json:"data"`
	Message    string `json:"message,omitempty"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalItems int    `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
	PageWindow []int  `json:"pageWindow"`
}
