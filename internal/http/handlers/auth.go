package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email             string `json:"email"`
		Username          string `json:"username"`
		Password          string `json:"password"`
		FirstName         string `json:"first_name"`
		LastName          string `json:"last_name"`
		PreferredLanguage string `json:"preferred_language"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := ah.authService.RegisterUser(c.Request.Context(), services.RegisterInput{
		Email:             req.Email,
		Username:          req.Username,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": u})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	pair, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ah.respondTokens(c, pair)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !bindJSON(c, &req) {
		return
	}
	pair, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ah.respondTokens(c, pair)
}

func (ah *AuthHandler) respondTokens(c *gin.Context, pair services.TokenPair) {
	response.RespondOK(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
		"user":          pair.User,
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /account
func (ah *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := ah.authService.DeleteAccount(c.Request.Context()); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "account deleted"})
}

// GET /me
func (ah *AuthHandler) Me(c *gin.Context) {
	me, err := ah.authService.GetMe(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /auth/check-username/:username
func (ah *AuthHandler) CheckUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	ok, err := ah.authService.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"username": username, "available": ok})
}

// GET /auth/check-email/:email
func (ah *AuthHandler) CheckEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))
	ok, err := ah.authService.EmailAvailable(c.Request.Context(), email)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"email": email, "available": ok})
}
