package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

const (
	todayPath    = "/api/v1/doctors/appointments/today"
	upcomingPath = "/api/v1/doctors/upcoming-appointments"
)

// MergeAppointments concatenates the today and upcoming collections and
// deduplicates by id, keeping the first occurrence. The two upstream
// queries can overlap, so an appointment scheduled for later today shows
// up in both.
func MergeAppointments(today, upcoming []models.Appointment) []models.Appointment {
	merged := make([]models.Appointment, 0, len(today)+len(upcoming))
	seen := make(map[string]bool, len(today)+len(upcoming))
	for _, apt := range append(append([]models.Appointment{}, today...), upcoming...) {
		if apt.ID != "" && seen[apt.ID] {
			continue
		}
		seen[apt.ID] = true
		merged = append(merged, apt)
	}
	return merged
}

// PartitionAppointments buckets by local calendar day: same day as now
// goes to today, strictly after today goes to upcoming. A past date that
// is not today lands in neither bucket; that gap matches the dashboard's
// observed behavior and is kept until product decides on an archive.
func PartitionAppointments(all []models.Appointment, now time.Time) (today, upcoming []models.Appointment) {
	y, m, d := now.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)

	for _, apt := range all {
		t, ok := parseAppointmentDate(apt.AppointmentDate, now.Location())
		if !ok {
			continue
		}
		switch {
		case !t.Before(startOfToday) && t.Before(startOfTomorrow):
			today = append(today, apt)
		case !t.Before(startOfTomorrow):
			upcoming = append(upcoming, apt)
		}
	}
	return today, upcoming
}

// CountAppointments produces the summary cards of the appointments
// screen.
func CountAppointments(all, today, upcoming []models.Appointment) models.AppointmentCounts {
	counts := models.AppointmentCounts{Today: len(today), Upcoming: len(upcoming)}
	for _, apt := range all {
		switch apt.Status {
		case "confirmed":
			counts.Confirmed++
		case "scheduled":
			counts.Scheduled++
		}
	}
	return counts
}

// parseAppointmentDate accepts the formats seen upstream: full RFC3339,
// a timestamp without zone, and a bare date.
func parseAppointmentDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CombineDateTime builds the single ISO-8601 timestamp the reschedule
// PATCH sends from the dialog's separate date and time fields.
func CombineDateTime(date, timeOfDay string, loc *time.Location) (string, bool) {
	if date == "" || timeOfDay == "" {
		return "", false
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, date+" "+timeOfDay, loc); err == nil {
			return t.Format(time.RFC3339), true
		}
	}
	return "", false
}

// fetchAppointmentLists issues the today and upcoming fetches
// concurrently through the cache and joins the results. Each list fails
// independently of the other widget reads on the screen, but the merged
// view needs both, so the first error wins.
func (a *App) fetchAppointmentLists(c *gin.Context, sess session.Session) ([]models.Appointment, []models.Appointment, error) {
	type result struct {
		appts []models.Appointment
		err   error
	}

	fetch := func(path string, out chan<- result) {
		payload, err := a.cachedGet(c, sess, areaAppts, path, nil, 0)
		if err != nil {
			out <- result{err: err}
			return
		}
		var parsed models.AppointmentListResponse
		if err := json.Unmarshal(payload, &parsed); err != nil {
			out <- result{err: err}
			return
		}
		out <- result{appts: parsed.Appointments}
	}

	todayCh := make(chan result, 1)
	upcomingCh := make(chan result, 1)
	go fetch(todayPath, todayCh)
	go fetch(upcomingPath, upcomingCh)

	todayRes := <-todayCh
	upcomingRes := <-upcomingCh
	if todayRes.err != nil {
		return nil, nil, todayRes.err
	}
	if upcomingRes.err != nil {
		return nil, nil, upcomingRes.err
	}
	return todayRes.appts, upcomingRes.appts, nil
}

// GetAppointmentView serves the merged appointments screen: both
// partitions, the deduplicated full list and the summary counts.
func (a *App) GetAppointmentView(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	todayList, upcomingList, err := a.fetchAppointmentLists(c, sess)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	all := MergeAppointments(todayList, upcomingList)
	today, upcoming := PartitionAppointments(all, time.Now())
	view := models.AppointmentView{
		Success:  true,
		Today:    today,
		Upcoming: upcoming,
		All:      all,
		Counts:   CountAppointments(all, today, upcoming),
	}
	c.JSON(http.StatusOK, view)
}

// GetTodaysAppointments is the cached proxy of the today list.
func (a *App) GetTodaysAppointments(c *gin.Context) {
	a.cachedProxy(c, areaAppts, todayPath)
}

// GetUpcomingAppointments is the cached proxy of the upcoming list.
func (a *App) GetUpcomingAppointments(c *gin.Context) {
	a.cachedProxy(c, areaAppts, upcomingPath)
}

// GetAppointmentCount is the cached proxy of the dashboard counter.
func (a *App) GetAppointmentCount(c *gin.Context) {
	a.cachedProxy(c, areaAppts, "/api/v1/doctors/appointments/count")
}

func (a *App) cachedProxy(c *gin.Context, area, path string) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}
	payload, err := a.cachedGet(c, sess, area, path, nil, 0)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

// CreateAppointment forwards the schedule form and invalidates the
// appointment lists so the new entry shows up on the next read.
func (a *App) CreateAppointment(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/appointments/create", body, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaAppts)
	proxyJSON(c, payload)
}

// RescheduleAppointment changes appointmentDate only. Both form fields
// must be present; nothing goes upstream otherwise, and on upstream
// failure the stored state is untouched (no optimistic patch to undo).
func (a *App) RescheduleAppointment(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	combined, ok := CombineDateTime(req.Date, req.Time, time.Local)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please select both a date and a time"})
		return
	}

	id := c.Param("id")
	payload, err := a.CRM.Patch(c.Request.Context(), "/api/v1/doctors/appointments/edit/"+id,
		gin.H{"appointmentDate": combined}, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaAppts)
	proxyJSON(c, payload)
}

// NotifyAppointment forwards the notify call and, when mail is
// configured, sends the reminder email as well. A mail failure does not
// fail the request; the upstream notification already went out.
func (a *App) NotifyAppointment(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Date  string `json:"appointmentDate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/appointments/notify", body, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	if a.Mailer != nil && body.Email != "" {
		a.Mailer.SendReminder(context.Background(), body.Email, body.Name, body.Date)
	}
	proxyJSON(c, payload)
}
