package handlers

import (
	"net/http"
	"time"

	"traceaq/middleware"
	"traceaq/models"
	"traceaq/services/user"
	"traceaq/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Service      user.UserService
	CookieSecure bool
	Logger       *zap.Logger
}

func NewAuthHandler(svc user.UserService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Service: svc, CookieSecure: cookieSecure, Logger: logger}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, token, maxAge, "/", "", h.CookieSecure, true)
}

// Login checks credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{
			"email":    "is required",
			"password": "is required",
		}})
		return
	}
	sess, err := h.Service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, sess.Token, sess.ExpiresAt)
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Service.SignOut(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		getLogger(c).Warn("Sign out failed", zap.Error(err))
	}
	h.setSessionCookie(c, "", time.Time{})
	c.Status(http.StatusNoContent)
}

// CurrentUser returns the signed in account.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	u, err := h.Service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// SendResetCode always answers 200 so the response cannot reveal whether the account exists.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"email": "is required"}})
		return
	}
	if err := h.Service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists for this email, a reset code has been sent"})
}

// VerifyResetCode checks a code and, when newPassword is present, sets the new password.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{
			"email": "is required",
			"code":  "is required",
		}})
		return
	}
	if err := h.Service.VerifyResetCode(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	if req.NewPassword == "" {
		c.JSON(http.StatusOK, gin.H{"valid": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "message": "Password updated"})
}
