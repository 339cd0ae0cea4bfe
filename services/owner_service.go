package services

import (
	"encoding/json"
	"log"
	"net/http"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

// The medical-owner portal shares the session, client and cache layers
// with the doctor dashboard; only the upstream base path and role
// differ.

const medicinesPath = "/api/medical-owner/medicines"

func (a *App) LoginOwner(c *gin.Context) {
	var loginReq models.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), "/api/medical-owner/login", loginReq, "")
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	var upstreamResp models.OwnerLoginUpstreamResponse
	if err := json.Unmarshal(payload, &upstreamResp); err != nil || upstreamResp.Token == "" {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unexpected response from the CRM service"})
		return
	}

	ownerID := upstreamResp.Profile.OwnerID
	if ownerID == "" {
		ownerID = loginReq.Email
	}
	token, err := a.createSession(c, upstreamResp.Token, loginReq.Email, ownerID, session.RoleMedicalOwner)
	if err != nil {
		log.Printf("[SESSION] save failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"profile": upstreamResp.Profile,
	})
}

func (a *App) RegisterOwner(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}
	payload, err := a.CRM.Post(c.Request.Context(), "/api/medical-owner/register", body, "")
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

func (a *App) GetOwnerProfile(c *gin.Context) {
	a.cachedProxy(c, areaProfile, "/api/medical-owner/profile")
}

func (a *App) UpdateOwnerProfile(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var profile models.MedicalOwnerProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Put(c.Request.Context(), "/api/medical-owner/update-profile", profile, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaProfile)
	proxyJSON(c, payload)
}

// Medicine manager: list reads go through the cache, every mutation
// invalidates the area.

func (a *App) ListMedicines(c *gin.Context) {
	a.cachedProxy(c, areaMedicine, medicinesPath)
}

func (a *App) CreateMedicine(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var med models.Medicine
	if err := c.ShouldBindJSON(&med); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}
	if med.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Medicine name is required"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), medicinesPath, med, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaMedicine)
	proxyJSON(c, payload)
}

func (a *App) UpdateMedicine(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var med models.Medicine
	if err := c.ShouldBindJSON(&med); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Put(c.Request.Context(), medicinesPath+"/"+c.Param("id"), med, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaMedicine)
	proxyJSON(c, payload)
}

func (a *App) DeleteMedicine(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	payload, err := a.CRM.Delete(c.Request.Context(), medicinesPath+"/"+c.Param("id"), sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaMedicine)
	proxyJSON(c, payload)
}

func (a *App) GenerateBill(c *gin.Context) {
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

	payload, err := a.CRM.Post(c.Request.Context(), "/api/medical-owner/bills/generate", body, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}
