package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	errorValueInvalidPassword = "invalid_password"
	errorValueSessionFailed   = "session_failed"

	jsonKeyStatus        = "status"
	jsonKeyAuthenticated = "authenticated"
	statusValueOK        = "ok"
)

// AuthHandlers implements the admin login, logout and session probe routes.
// The shared password lives only in server configuration.
type AuthHandlers struct {
	logger         *zap.Logger
	sessionManager *SessionManager
	adminPassword  string
}

// NewAuthHandlers wires the authentication routes.
func NewAuthHandlers(logger *zap.Logger, sessionManager *SessionManager, adminPassword string) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		logger:         logger,
		sessionManager: sessionManager,
		adminPassword:  adminPassword,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login establishes an admin session when the submitted password matches the
// configured one. Failure always yields the same message and status.
func (handlers *AuthHandlers) Login(context *gin.Context) {
	var payload loginRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	if subtle.ConstantTimeCompare([]byte(payload.Password), []byte(handlers.adminPassword)) != 1 {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueInvalidPassword})
		return
	}

	if sessionErr := handlers.sessionManager.EstablishAdminSession(context); sessionErr != nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSessionFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

// Logout clears the admin session.
func (handlers *AuthHandlers) Logout(context *gin.Context) {
	handlers.sessionManager.ClearAdminSession(context)
	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

// SessionStatus reports whether the caller holds a live admin session. The
// form page uses it to decide the initial view.
func (handlers *AuthHandlers) SessionStatus(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{jsonKeyAuthenticated: handlers.sessionManager.HasAdminSession(context)})
}
