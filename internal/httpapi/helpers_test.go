package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/httpapi"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/storage"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/testutil"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/viewflow"
)

const (
	testAdminPassword = "correct horse battery staple"
	testSessionSecret = "test-session-secret"
	testSessionTTL    = time.Hour
)

type testHarness struct {
	database       *gorm.DB
	sessionManager *httpapi.SessionManager
	authHandlers   *httpapi.AuthHandlers
	publicHandlers *httpapi.PublicHandlers
	adminHandlers  *httpapi.AdminHandlers
	pageHandlers   *httpapi.PageHandlers
}

func newTestHarness(testingT *testing.T) testHarness {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	database, openErr := storage.OpenDatabase(testutil.NewSQLiteTestDatabase(testingT).Configuration())
	require.NoError(testingT, openErr)
	require.NoError(testingT, storage.AutoMigrate(database))

	logger := zap.NewNop()
	sessionManager := httpapi.NewSessionManager(logger, testSessionSecret, testSessionTTL)

	return testHarness{
		database:       database,
		sessionManager: sessionManager,
		authHandlers:   httpapi.NewAuthHandlers(logger, sessionManager, testAdminPassword),
		publicHandlers: httpapi.NewPublicHandlers(database, logger, viewflow.DefaultGestureKey, viewflow.DefaultGestureLength),
		adminHandlers:  httpapi.NewAdminHandlers(database, logger),
		pageHandlers:   httpapi.NewPageHandlers(database, logger, sessionManager),
	}
}

func newJSONContext(testingT *testing.T, method string, target string, payload any) (*httptest.ResponseRecorder, *gin.Context) {
	testingT.Helper()

	var requestBody bytes.Buffer
	if payload != nil {
		require.NoError(testingT, json.NewEncoder(&requestBody).Encode(payload))
	}

	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	context.Request = httptest.NewRequest(method, target, &requestBody)
	context.Request.Header.Set("Content-Type", "application/json")
	return recorder, context
}

// loginCookies authenticates against the login handler and returns the
// session cookies for follow-up requests.
func loginCookies(testingT *testing.T, harness testHarness) []*http.Cookie {
	testingT.Helper()

	recorder, context := newJSONContext(testingT, http.MethodPost, "/api/admin/login", gin.H{"password": testAdminPassword})
	harness.authHandlers.Login(context)
	require.Equal(testingT, http.StatusOK, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.NotEmpty(testingT, cookies)
	return cookies
}

func attachCookies(request *http.Request, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder, target any) {
	testingT.Helper()
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), target))
}

func intPointer(value int) *int {
	return &value
}
