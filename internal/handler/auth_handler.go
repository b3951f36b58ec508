package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"routtie/internal/service"
	"routtie/internal/store"
)

type AuthHandler struct {
	authService *service.AuthService
	stores      *store.Manager
}

func NewAuthHandler(authService *service.AuthService, stores *store.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stores:      stores,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": u.ID,
		"email":   u.Email,
	})
}

// Login handles POST /login. A successful login attaches the user's routine
// store, which starts loading their remote documents.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, userID, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	h.stores.Attach(userID)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": userID,
	})
}

// Logout handles POST /logout. The user's routine store is discarded: local
// state and fallback cleared, reminders cancelled. Remote documents persist
// for the next sign-in.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	h.stores.Detach(userID.(int))

	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
