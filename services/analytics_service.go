package services

import (
	"encoding/json"
	"net/http"
	"time"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"

	"github.com/gin-gonic/gin"
)

const statsPath = "/api/v1/doctors/stats"

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var appointmentStatuses = []string{"scheduled", "confirmed", "completed", "cancelled", "no-show"}

// BuildLeadTrends buckets leads by creation month, with a converted
// overlay. Twelve buckets regardless of data, like the chart expects.
func BuildLeadTrends(leads []models.Lead, loc *time.Location) []models.MonthTrend {
	trends := make([]models.MonthTrend, 12)
	for i := range trends {
		trends[i].Month = monthNames[i]
	}
	for _, lead := range leads {
		t, ok := parseAppointmentDate(lead.CreatedAt, loc)
		if !ok {
			continue
		}
		idx := int(t.Month()) - 1
		trends[idx].Leads++
		if lead.InitialStatus == "converted" {
			trends[idx].Converted++
		}
	}
	return trends
}

// BuildLeadSources counts leads per acquisition source, empty source
// falling into "Unknown". Order is first-seen so the pie chart's slice
// order is stable across refreshes.
func BuildLeadSources(leads []models.Lead) []models.SourceCount {
	counts := make(map[string]int)
	var order []string
	for _, lead := range leads {
		source := lead.Source
		if source == "" {
			source = "Unknown"
		}
		if _, seen := counts[source]; !seen {
			order = append(order, source)
		}
		counts[source]++
	}
	sources := make([]models.SourceCount, 0, len(order))
	for _, name := range order {
		sources = append(sources, models.SourceCount{Name: name, Value: counts[name]})
	}
	return sources
}

// BuildAppointmentTrend counts leads with an appointment on each of the
// last seven days, oldest first.
func BuildAppointmentTrend(leads []models.Lead, now time.Time) []models.DayCount {
	days := make([]models.DayCount, 7)
	for i := range days {
		day := now.AddDate(0, 0, -(6 - i))
		days[i].Date = day.Format("2006-01-02")
	}
	for _, lead := range leads {
		if len(lead.AppointmentDate) < 10 {
			continue
		}
		date := lead.AppointmentDate[:10]
		for i := range days {
			if days[i].Date == date {
				days[i].Appointments++
			}
		}
	}
	return days
}

// BuildStatusCounts tallies the five appointment statuses across the
// lead list.
func BuildStatusCounts(leads []models.Lead) []models.StatusCount {
	counts := make([]models.StatusCount, len(appointmentStatuses))
	for i, status := range appointmentStatuses {
		counts[i].Status = status
		for _, lead := range leads {
			if lead.Status == status {
				counts[i].Count++
			}
		}
	}
	return counts
}

// GetStats is the cached proxy of the lead status counters.
func (a *App) GetStats(c *gin.Context) {
	a.cachedProxy(c, areaStats, statsPath)
}

// GetWeekCount, GetMonthlyPatientStats and GetWeeklyPatientStats back
// the smaller stat widgets; each is an independent cached proxy, so one
// failing upstream endpoint never takes a sibling widget down with it.
func (a *App) GetWeekCount(c *gin.Context) {
	a.cachedProxy(c, areaStats, "/api/v1/doctors/count/week")
}

func (a *App) GetMonthlyPatientStats(c *gin.Context) {
	a.cachedProxy(c, areaStats, "/api/v1/doctors/patient-stats/months")
}

func (a *App) GetWeeklyPatientStats(c *gin.Context) {
	a.cachedProxy(c, areaStats, "/api/v1/doctors/patient-stats/weeks")
}

// GetAnalytics computes the analytics screen gateway-side from the
// stats endpoint plus the full patients list, both read through the
// cache under their own areas, so a lead mutation refreshes this view
// too.
func (a *App) GetAnalytics(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	statsPayload, err := a.cachedGet(c, sess, areaStats, statsPath, nil, 0)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	var stats models.LeadStatsResponse
	if err := json.Unmarshal(statsPayload, &stats); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unexpected response from the CRM service"})
		return
	}

	leadsPayload, err := a.cachedGet(c, sess, areaLeads, leadsPath, nil, 0)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	var list models.LeadListResponse
	if err := json.Unmarshal(leadsPayload, &list); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unexpected response from the CRM service"})
		return
	}

	leads := list.Leads()
	now := time.Now()
	view := models.AnalyticsView{
		Success:           true,
		Stats:             stats.Data,
		LeadTrends:        BuildLeadTrends(leads, now.Location()),
		LeadSources:       BuildLeadSources(leads),
		AppointmentTrend:  BuildAppointmentTrend(leads, now),
		AppointmentStatus: BuildStatusCounts(leads),
	}
	c.JSON(http.StatusOK, view)
}
