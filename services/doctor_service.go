package services

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"
	"doctor_crm_gateway/session"
	"doctor_crm_gateway/upstream"

	"github.com/gin-gonic/gin"
)

// createSession mints a gateway token for an upstream login and
// persists the session through the injected store.
func (a *App) createSession(c *gin.Context, upstreamToken, email, userID, role string) (string, error) {
	token, sessionID, err := auth.GenerateToken(a.Cfg.JWTSecret, role)
	if err != nil {
		return "", err
	}
	err = a.Sessions.Save(c.Request.Context(), session.Session{
		ID:            sessionID,
		UpstreamToken: upstreamToken,
		Email:         email,
		UserID:        userID,
		Role:          role,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// LoginDoctor forwards the credentials to the CRM and, on success,
// opens a gateway session holding the upstream bearer token.
func (a *App) LoginDoctor(c *gin.Context) {
	var loginReq models.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	payload, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/login", loginReq, "")
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	var upstreamResp models.LoginUpstreamResponse
	if err := json.Unmarshal(payload, &upstreamResp); err != nil || upstreamResp.Token == "" {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unexpected response from the CRM service"})
		return
	}

	token, err := a.createSession(c, upstreamResp.Token, loginReq.Email, upstreamResp.UserID(), session.RoleDoctor)
	if err != nil {
		log.Printf("[SESSION] save failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not create session"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Success:  true,
		Token:    token,
		Email:    loginReq.Email,
		DoctorID: upstreamResp.UserID(),
	})
}

// RegisterDoctor forwards the registration form, multipart included
// when the upload step attached documents, and logs the doctor straight
// in when the CRM returns a token.
func (a *App) RegisterDoctor(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	var payload []byte
	var err error
	var email string

	if strings.HasPrefix(contentType, "multipart/form-data") {
		payload, email, err = a.forwardMultipart(c, http.MethodPost, "/api/v1/doctors/register", "")
	} else {
		var body map[string]interface{}
		if bindErr := c.ShouldBindJSON(&body); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
			return
		}
		email, _ = body["email"].(string)
		payload, err = a.CRM.Post(c.Request.Context(), "/api/v1/doctors/register", body, "")
	}
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	var upstreamResp models.LoginUpstreamResponse
	if jsonErr := json.Unmarshal(payload, &upstreamResp); jsonErr == nil && upstreamResp.Token != "" {
		token, sessErr := a.createSession(c, upstreamResp.Token, email, upstreamResp.UserID(), session.RoleDoctor)
		if sessErr == nil {
			c.JSON(http.StatusCreated, models.LoginResponse{
				Success:  true,
				Token:    token,
				Email:    email,
				DoctorID: upstreamResp.UserID(),
			})
			return
		}
		log.Printf("[SESSION] save failed after register: %v", sessErr)
	}
	proxyJSON(c, payload)
}

// forwardMultipart re-sends an incoming multipart form upstream. The
// email return value lets register reuse the form field.
func (a *App) forwardMultipart(c *gin.Context, method, path, bearer string) ([]byte, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", &upstream.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid multipart form"}
	}

	fields := make(map[string]string)
	for name, values := range form.Value {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}

	files := make(map[string]upstream.FilePart)
	for name, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, "", err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, "", err
		}
		files[name] = upstream.FilePart{Filename: headers[0].Filename, Content: content}
	}

	payload, err := a.CRM.PostMultipart(c.Request.Context(), method, path, fields, files, bearer)
	return payload, fields["email"], err
}

// LogoutDoctor tells the CRM and clears the gateway session. The
// session goes away even when the upstream call fails; a dead upstream
// must not pin a user to a session they asked to end.
func (a *App) LogoutDoctor(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	if _, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/logout", nil, sess.UpstreamToken); err != nil {
		log.Printf("[AUTH] upstream logout failed: %v", err)
	}
	if err := a.Sessions.Clear(c.Request.Context(), sess.ID); err != nil {
		log.Printf("[SESSION] clear failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// GoogleCallback handles the OAuth return: the CRM redirects here with
// the token and identity in the query string, the gateway opens a
// session and sends the browser on to the dashboard.
func (a *App) GoogleCallback(c *gin.Context) {
	upstreamToken := c.Query("token")
	doctorID := c.Query("doctorId")
	email := c.Query("email")
	if upstreamToken == "" || doctorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing token in callback"})
		return
	}

	token, err := a.createSession(c, upstreamToken, email, doctorID, session.RoleDoctor)
	if err != nil {
		log.Printf("[SESSION] save failed in oauth callback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not create session"})
		return
	}
	c.Redirect(http.StatusFound, a.Cfg.DashboardURL+"?token="+token)
}

// GetDoctorProfile serves the profile screen; fetched once per session
// in practice, so it sits in the cache under the profile area.
func (a *App) GetDoctorProfile(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}
	payload, err := a.cachedGet(c, sess, areaProfile, "/api/v1/doctors/profile/"+c.Param("id"), nil, 0)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

// UpdateDoctorProfile is the full-object settings submit; multipart
// when a new photo is attached. The cached profile is dropped so the
// screen re-reads fresh data.
func (a *App) UpdateDoctorProfile(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	path := "/api/v1/doctors/update/" + c.Param("id")
	var payload []byte
	var err error
	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		payload, _, err = a.forwardMultipart(c, http.MethodPut, path, sess.UpstreamToken)
	} else {
		var body map[string]interface{}
		if bindErr := c.ShouldBindJSON(&body); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
			return
		}
		payload, err = a.CRM.Put(c.Request.Context(), path, body, sess.UpstreamToken)
	}
	if err != nil {
		reportUpstreamError(c, err)
		return
	}

	a.invalidateArea(c.Request.Context(), sess.UserID, areaProfile)
	proxyJSON(c, payload)
}

// ChangePassword proxies the settings-screen password change.
func (a *App) ChangePassword(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization required"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Both current and new password are required"})
		return
	}

	payload, err := a.CRM.Put(c.Request.Context(), "/api/v1/doctors/change-password", req, sess.UpstreamToken)
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

// RequestPasswordReset and ResetPassword are unauthenticated proxies of
// the forgot-password flow.
func (a *App) RequestPasswordReset(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}
	payload, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/reset-password-request", body, "")
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}

func (a *App) ResetPassword(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}
	payload, err := a.CRM.Post(c.Request.Context(), "/api/v1/doctors/reset-password/"+c.Param("token"), body, "")
	if err != nil {
		reportUpstreamError(c, err)
		return
	}
	proxyJSON(c, payload)
}
