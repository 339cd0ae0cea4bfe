package models

// MedicalOwnerProfile is the medical-owner portal's profile document.
type MedicalOwnerProfile struct {
	OwnerID      string `json:"ownerId,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PharmacyName string `json:"pharmacyName,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Medicine is one row of the owner's medicine manager.
type Medicine struct {
	ID       string  `json:"_id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Stock    int     `json:"stock"`
	Price    float64 `json:"price"`
	Expiry   string  `json:"expiry,omitempty"`
}

// OwnerLoginUpstreamResponse is what the CRM returns on owner login.
type OwnerLoginUpstreamResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Token   string              `json:"token"`
	Profile MedicalOwnerProfile `json:"profile"`
}
