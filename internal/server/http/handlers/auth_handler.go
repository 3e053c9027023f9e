package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/server/http/dto"
	"github.com/polkiloo/library/internal/server/http/middleware"
)

// AuthHandler processes registration, login and logout.
type AuthHandler struct {
	facade     AuthFacade
	sessionTTL time.Duration
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{facade: facade, sessionTTL: sessionTTL}
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormResponse{
		Message: "Create a library account",
		Action:  "/register",
		Fields:  []string{"username", "password"},
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.facade.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormResponse{
		Message: "Sign in",
		Action:  middleware.LoginPath,
		Fields:  []string{"username", "password"},
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	identity, token, err := h.facade.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetSessionCookie(c, token, h.sessionTTL)
	if identity.IsAdministrator() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.Redirect(http.StatusSeeOther, "/student")
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}
