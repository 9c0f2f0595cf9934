package handler

import (
	"errors"
	"net/http"
	"time"

	"agora/internal/middleware"
	"agora/internal/service"
	"agora/internal/session"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	store       *session.Store
	sessionTTL  time.Duration
}

func NewAuthHandler(authService *service.AuthService, store *session.Store, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		sessionTTL:  sessionTTL,
	}
}

// LoginForm renders the login page.
// GET /auth/login
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Caller":  middleware.CallerFrom(c),
		"Notices": popNotices(h.store, c),
	})
}

// Login verifies credentials and rotates the session: the guest session is
// destroyed and a fresh authenticated one is issued (avoids session fixation).
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.Login(username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flash(h.store, c, "error", "Invalid username or password.")
		} else {
			flash(h.store, c, "error", "Login failed, please try again.")
		}
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	if oldSID := middleware.SessionIDFrom(c); oldSID != "" {
		_ = h.store.Destroy(c.Request.Context(), oldSID)
	}

	sid, err := h.store.Create(c.Request.Context(), session.Data{
		UserID:  user.ID.String(),
		IsAdmin: user.IsAdmin(),
	})
	if err != nil {
		flash(h.store, c, "error", "Login failed, please try again.")
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	c.SetCookie(middleware.SessionCookie, sid, int(h.sessionTTL.Seconds()), "/", "", false, true)
	_ = h.store.PushNotice(c.Request.Context(), sid, session.Notice{Kind: "success", Text: "Logged in successfully."})
	c.Redirect(http.StatusFound, "/")
}

// RegisterForm renders the registration page.
// GET /auth/register
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Caller":  middleware.CallerFrom(c),
		"Notices": popNotices(h.store, c),
	})
}

// Register creates a user account and sends the visitor to the login page.
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	_, err := h.authService.Register(username, email, password)
	if err != nil {
		flash(h.store, c, "error", err.Error())
		c.Redirect(http.StatusFound, "/auth/register")
		return
	}

	flash(h.store, c, "success", "Registration successful, please log in.")
	c.Redirect(http.StatusFound, "/auth/login")
}

// Logout destroys the session and clears the cookie.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid := middleware.SessionIDFrom(c); sid != "" {
		_ = h.store.Destroy(c.Request.Context(), sid)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
