package services

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"

	"github.com/gin-gonic/gin"
)

const (
	leadsPath       = "/api/v1/doctors/patients"
	leadFilterPath  = "/api/patient/filter"
	recentLeadsPath = "/api/v1/doctors/recent-patients"

	// The leads table shows 7 rows per page with a pager window of at
	// most 5 page numbers.
	LeadsPerPage   = 7
	pageWindowSize = 5
)

// PaginateLeads slices an already-fetched list. An out-of-range page is
// a no-op: the page is clamped to [1, last] rather than rejected.
func PaginateLeads(leads []models.Lead, page int) models.LeadPage {
	totalPages := (len(leads) + LeadsPerPage - 1) / LeadsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * LeadsPerPage
	end := start + LeadsPerPage
	if start > len(leads) {
		start = len(leads)
	}
	if end > len(leads) {
		end = len(leads)
	}

	result := models.LeadPage{
		Success:    true,
		Data:       leads[start:end],
		Page:       page,
		PageSize:   LeadsPerPage,
		TotalItems: len(leads),
		TotalPages: totalPages,
		PageWindow: PageWindow(page, totalPages),
	}
	if len(leads) == 0 {
		result.Data = []models.Lead{}
		result.Message = "No patients found."
	}
	return result
}

// PageWindow returns up to pageWindowSize page numbers centered on
// current, shifted to stay inside [1, total].
func PageWindow(current, total int) []int {
	if total < 1 {
		total = 1
	}
	size := pageWindowSize
	if size > total {
		size = total
	}
	start := current - size/2
	if start < 1 {
		start = 1
	}
	if start+size-1 > total {
		start = total - size + 1
	}
	window := make([]int, size)
	for i := range window {
		window[i] = start + i
	}
	return window
}

// GetLeads serves the leads list. Without a page parameter the full
// cached list is proxied through; with one, the gateway paginates.
func (a *App) GetLeads(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	payload, err := a.cachedGet(c, sess, areaLeads, leadsPath, nil, 0)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	pageParam := c.Query("page")
	if pageParam == "" {
		proxyJSON(c, payload)
		return
	}

	var parsed models.LeadListResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unexpected response from the CRM service"})
		return
	}
	page, _ := strconv.Atoi(pageParam)
	c.JSON(http.StatusOK, PaginateLeads(parsed.Leads(), page))
}

// FilterLeads passes the free-text query to the backend filter
// endpoint; the matching itself happens upstream. An empty query
// short-circuits to the plain (cached) list without touching the search
// endpoint, and live-search results are never cached.
func (a *App) FilterLeads(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	search := c.Query("search")
	if search == "" {
		payload, err := a.cachedGet(c, sess, areaLeads, leadsPath, nil, 0)
		if err != nil {
			reportUpstreamError(c, err)
			return
		}
		proxyJSON(c, payload)
		return
	}

	query := url.Values{"search": []string{search}}
	payload, err := a.CRM.Get(c.Request.Context(), leadFilterPath, query, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	var parsed models.LeadListResponse
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Success && len(parsed.Leads()) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []models.Lead{}, "message": "No patients found."})
		return
	}
	proxyJSON(c, payload)
}

// GetLead serves the detail modal.
func (a *App) GetLead(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}
	payload, err := a.CRM.Get(c.Request.Context(), leadsPath+"/"+c.Param("id"), nil, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

// GetRecentLeads backs the dashboard's recent-leads widget.
func (a *App) GetRecentLeads(c *gin.Context) {
	a.cachedProxy(c, areaLeads, recentLeadsPath)
}

// CreateLead is the add-lead form submit. The list and stats caches are
// invalidated so the new lead is visible immediately, not after TTL.
func (a *App) CreateLead(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}
	if lead.FirstName == "" || lead.LastName == "" || lead.Email == "" || lead.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "First name, last name, email and phone are required"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), "/api/patient/create", lead, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaLeads)
	a.invalidateArea(c.Request.Context(), sess.UserID, areaStats)
	proxyJSON(c, payload)
}

// UpdateLead is the edit-modal submit; same invalidation as create, so
// the list never shows pre-edit data.
func (a *App) UpdateLead(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Put(c.Request.Context(), leadsPath+"/update/"+c.Param("id"), lead, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaLeads)
	a.invalidateArea(c.Request.Context(), sess.UserID, areaStats)
	proxyJSON(c, payload)
}
