package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// SessionName is the cookie holding the admin session marker.
	SessionName = "admin_session"

	sessionValueKeyAdmin  = "admin"
	sessionValueActive    = "active"
	authErrorUnauthorized = "unauthorized"
	logEventLoadSession   = "load_session"
	logEventSaveSession   = "save_session"
)

// SessionManager issues and validates the expiring admin session cookie. The
// cookie is checked on every privileged route, never only at the UI layer.
type SessionManager struct {
	logger       *zap.Logger
	sessionStore *sessions.CookieStore
}

// NewSessionManager builds a cookie-backed session manager. Sessions expire
// after the provided time to live.
func NewSessionManager(logger *zap.Logger, sessionSecret string, sessionTTL time.Duration) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionStore := sessions.NewCookieStore([]byte(sessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{logger: logger, sessionStore: sessionStore}
}

// EstablishAdminSession marks the caller as an authenticated admin.
func (manager *SessionManager) EstablishAdminSession(context *gin.Context) error {
	sessionInstance, sessionErr := manager.sessionStore.Get(context.Request, SessionName)
	if sessionErr != nil {
		// A stale or tampered cookie decodes to a fresh session; log and continue.
		manager.logger.Warn(logEventLoadSession, zap.Error(sessionErr))
	}
	sessionInstance.Values[sessionValueKeyAdmin] = sessionValueActive
	if saveErr := sessionInstance.Save(context.Request, context.Writer); saveErr != nil {
		manager.logger.Warn(logEventSaveSession, zap.Error(saveErr))
		return saveErr
	}
	return nil
}

// ClearAdminSession deletes the admin session marker.
func (manager *SessionManager) ClearAdminSession(context *gin.Context) {
	sessionInstance, sessionErr := manager.sessionStore.Get(context.Request, SessionName)
	if sessionErr != nil {
		manager.logger.Warn(logEventLoadSession, zap.Error(sessionErr))
	}
	delete(sessionInstance.Values, sessionValueKeyAdmin)
	sessionInstance.Options.MaxAge = -1
	if saveErr := sessionInstance.Save(context.Request, context.Writer); saveErr != nil {
		manager.logger.Warn(logEventSaveSession, zap.Error(saveErr))
	}
}

// HasAdminSession reports whether the request carries a live admin session.
func (manager *SessionManager) HasAdminSession(context *gin.Context) bool {
	sessionInstance, sessionErr := manager.sessionStore.Get(context.Request, SessionName)
	if sessionErr != nil {
		manager.logger.Warn(logEventLoadSession, zap.Error(sessionErr))
		return false
	}
	marker, ok := sessionInstance.Values[sessionValueKeyAdmin].(string)
	return ok && marker == sessionValueActive
}

// RequireAdminJSON rejects requests without a live admin session.
func (manager *SessionManager) RequireAdminJSON() gin.HandlerFunc {
	return func(context *gin.Context) {
		if !manager.HasAdminSession(context) {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
			return
		}
		context.Next()
	}
}
