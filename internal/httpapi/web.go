package httpapi

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/storage"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/viewflow"
	"github.com/MarkoPoloResearchLab/workshop_feedback/pkg/sociallinks"
)

const (
	htmlContentType = "text/html; charset=utf-8"

	// RouteRoot serves whichever view the flow machine selects on load.
	RouteRoot = "/"
	// RouteThankYou serves the post-submission acknowledgement view.
	RouteThankYou = "/thank-you"
	// RouteAdmin serves the login view, or the dashboard for a live session.
	RouteAdmin = "/admin"

	socialLinksElementID  = "form-social-links"
	socialLinksBaseClass  = "social-links"
	socialLinksItemClass  = "social-link"
	socialLabelInstagram  = "Instagram"
	socialLabelLinkedIn   = "LinkedIn"
	socialLabelWhatsapp   = "WhatsApp"
	logEventRenderView    = "render_view"
	logEventRenderFooter  = "render_social_links"
	renderFailureBodyText = "internal error"
)

type viewTemplateData struct {
	Title      string
	FooterHTML template.HTML
}

var viewTemplates = map[viewflow.View]*template.Template{
	viewflow.ViewForm: template.Must(template.New(string(viewflow.ViewForm)).Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-view="form">
  <main id="feedback-form-root"></main>
  {{.FooterHTML}}
</body>
</html>`)),
	viewflow.ViewAdminLogin: template.Must(template.New(string(viewflow.ViewAdminLogin)).Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-view="admin-login">
  <main id="admin-login-root"></main>
</body>
</html>`)),
	viewflow.ViewAdminDashboard: template.Must(template.New(string(viewflow.ViewAdminDashboard)).Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-view="admin-dashboard">
  <main id="admin-dashboard-root"></main>
</body>
</html>`)),
	viewflow.ViewThankYou: template.Must(template.New(string(viewflow.ViewThankYou)).Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-view="thank-you">
  <main id="thank-you-root"></main>
</body>
</html>`)),
}

var viewTitles = map[viewflow.View]string{
	viewflow.ViewForm:           "Workshop Feedback",
	viewflow.ViewAdminLogin:     "Admin Login",
	viewflow.ViewAdminDashboard: "Admin Dashboard",
	viewflow.ViewThankYou:       "Thank You",
}

// PageHandlers renders the four application views. Which template is served
// is decided exclusively by the flow machine seeded from the session state.
type PageHandlers struct {
	database       *gorm.DB
	logger         *zap.Logger
	sessionManager *SessionManager
}

// NewPageHandlers wires the server-rendered pages.
func NewPageHandlers(database *gorm.DB, logger *zap.Logger, sessionManager *SessionManager) *PageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandlers{database: database, logger: logger, sessionManager: sessionManager}
}

// RenderRoot serves the form, or the dashboard when a session is present.
func (handlers *PageHandlers) RenderRoot(context *gin.Context) {
	machine := viewflow.NewMachine(handlers.sessionManager.HasAdminSession(context))
	handlers.renderView(context, machine.Current())
}

// RenderThankYou serves the post-submission view.
func (handlers *PageHandlers) RenderThankYou(context *gin.Context) {
	machine := viewflow.NewMachine(false)
	if transitionErr := machine.AcknowledgeSubmission(); transitionErr != nil {
		handlers.logger.Warn(logEventRenderView, zap.Error(transitionErr))
		context.Redirect(http.StatusFound, RouteRoot)
		return
	}
	handlers.renderView(context, machine.Current())
}

// RenderAdmin serves the login view, or the dashboard for a live session.
func (handlers *PageHandlers) RenderAdmin(context *gin.Context) {
	machine := viewflow.NewMachine(handlers.sessionManager.HasAdminSession(context))
	if machine.Current() == viewflow.ViewForm {
		if transitionErr := machine.RevealAdminLogin(); transitionErr != nil {
			handlers.logger.Warn(logEventRenderView, zap.Error(transitionErr))
			context.Redirect(http.StatusFound, RouteRoot)
			return
		}
	}
	handlers.renderView(context, machine.Current())
}

func (handlers *PageHandlers) renderView(context *gin.Context, view viewflow.View) {
	data := viewTemplateData{Title: viewTitles[view]}
	if view == viewflow.ViewForm {
		data.FooterHTML = handlers.renderSocialLinksFooter()
	}

	pageTemplate := viewTemplates[view]
	var buffer bytes.Buffer
	if renderErr := pageTemplate.Execute(&buffer, data); renderErr != nil {
		handlers.logger.Error(logEventRenderView, zap.String("view", string(view)), zap.Error(renderErr))
		context.String(http.StatusInternalServerError, renderFailureBodyText)
		return
	}

	context.Data(http.StatusOK, htmlContentType, buffer.Bytes())
}

func (handlers *PageHandlers) renderSocialLinksFooter() template.HTML {
	links, loadErr := storage.LoadSocialLinks(handlers.database)
	if loadErr != nil {
		// Missing links are cosmetic; the form still renders.
		handlers.logger.Warn(logEventRenderFooter, zap.Error(loadErr))
		return ""
	}

	footerHTML, renderErr := sociallinks.Render(sociallinks.Config{
		ElementID: socialLinksElementID,
		BaseClass: socialLinksBaseClass,
		ItemClass: socialLinksItemClass,
		Links: []sociallinks.Link{
			{Label: socialLabelInstagram, URL: links.InstagramURL},
			{Label: socialLabelLinkedIn, URL: links.LinkedInURL},
			{Label: socialLabelWhatsapp, URL: links.WhatsappURL},
		},
	})
	if renderErr != nil {
		handlers.logger.Warn(logEventRenderFooter, zap.Error(renderErr))
		return ""
	}

	return footerHTML
}
