package models

// LeadStats is the upstream /doctors/stats payload: lead counts by CRM
// status.
type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Converted int `json:"converted"`
}

type LeadStatsResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    LeadStats `json:"data"`
}

// MonthTrend is one bucket of the 12-month lead trend chart.
type MonthTrend struct {
	Month     string `json:"month"`
	Leads     int    `json:"leads"`
	Converted int    `json:"converted"`
}

// SourceCount is one slice of the lead-sources pie chart.
type SourceCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DayCount is one point of the last-7-days appointment trend.
type DayCount struct {
	Date         string `json:"date"`
	Appointments int    `json:"appointments"`
}

// StatusCount is one bar of the appointment-status chart.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AnalyticsView is the aggregated analytics screen payload, computed
// gateway-side from the stats endpoint plus the full patients list.
type AnalyticsView struct {
	Success           bool          `json:"success"`
	Stats             LeadStats     `json:"stats"`
	LeadTrends        []MonthTrend  `json:"leadTrends"`
	LeadSources       []SourceCount `json:"leadSources"`
	AppointmentTrend  []DayCount    `json:"appointmentTrend"`
	AppointmentStatus []StatusCount `json:"appointmentStatus"`
}
