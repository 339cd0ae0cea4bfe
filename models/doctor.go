package models

// DoctorProfile is fetched once per session and updated via a
// full-object PUT.
type DoctorProfile struct {
	DoctorID          string `json:"doctorId,omitempty"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Specialty         string `json:"specialty,omitempty"`
	YearsOfExperience int    `json:"yearsOfExperience,omitempty"`
	Bio               string `json:"bio,omitempty"`
	PhotoURL          string `json:"photoUrl,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginUpstreamResponse is what the CRM backend returns on a successful
// login or registration.
type LoginUpstreamResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Token    string `json:"token"`
	DoctorID string `json:"doctor_id,omitempty"`
	// Some deployments return the id camel-cased.
	DoctorIDAlt string `json:"doctorId,omitempty"`
}

// UserID returns the doctor id under whichever key the upstream used.
func (r *LoginUpstreamResponse) UserID() string {
	if r.DoctorID != "" {
		return r.DoctorID
	}
	return r.DoctorIDAlt
}

// LoginResponse is the gateway's reply: the gateway session token plus
// the identifying fields the dashboard keeps around.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Email    string `json:"email"`
	DoctorID string `json:"doctorId"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}
