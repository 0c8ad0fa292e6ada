package router

import (
	"net/http"

	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the API handlers
type Handlers struct {
	Auth        *handler.AuthHandler
	Companies   *handler.CompanyHandler
	Contacts    *handler.ContactHandler
	Competitors *handler.CompetitorHandler
	Leads       *handler.LeadHandler
	Deals       *handler.OpportunityHandler
	Activities  *handler.ActivityHandler
	Expenses    *handler.ExpenseHandler
	Settings    *handler.SettingsHandler
	Dashboard   *handler.DashboardHandler
	Import      *handler.ImportHandler
}

// Limits bounds request bodies. Uploads get their own, larger limit.
type Limits struct {
	MaxBodySize   int64
	MaxUploadSize int64
}

// Resources builds the CRM API resources
func Resources(h Handlers, limits Limits) []*Resource {
	body := middleware.BodyLimit(limits.MaxBodySize)
	admin := middleware.RequireRole("admin")

	auth := NewResource("auth", "/auth").Use(body).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	companies := NewResource("companies", "/companies").Use(body).
		CRUD(h.Companies).
		GET("/:id/contacts", h.Companies.ListContacts).
		Activities(h.Activities.ListByRelated("company"))

	contacts := NewResource("contacts", "/contacts").Use(body).
		CRUD(h.Contacts).
		Activities(h.Activities.ListByRelated("contact"))

	competitors := NewResource("competitors", "/competitors").Use(body).
		CRUD(h.Competitors)

	leads := NewResource("leads", "/leads").Use(body).
		CRUD(h.Leads).
		PATCH("/:id/status", h.Leads.UpdateStatus).
		POST("/:id/convert", h.Leads.Convert).
		Activities(h.Activities.ListByRelated("lead"))

	deals := NewResource("opportunities", "/opportunities").Use(body).
		CRUD(h.Deals).
		PATCH("/:id/stage", h.Deals.UpdateStage).
		Activities(h.Activities.ListByRelated("opportunity"))

	pipeline := NewResource("pipeline", "/pipeline").
		GET("/leads", h.Leads.Board).
		GET("/opportunities", h.Deals.Board)

	activities := NewResource("activities", "/activities").Use(body).
		CRUD(h.Activities).
		GET("/upcoming", h.Activities.Upcoming).
		GET("/overdue", h.Activities.Overdue).
		POST("/:id/complete", h.Activities.Complete).
		POST("/:id/reopen", h.Activities.Reopen)

	expenses := NewResource("expenses", "/expenses").Use(body).
		CRUD(h.Expenses).
		GET("/summary", h.Expenses.Summary).
		POST("/:id/submit", h.Expenses.Submit).
		POST("/:id/approve", admin, h.Expenses.Approve).
		POST("/:id/reject", admin, h.Expenses.Reject).
		POST("/:id/receipt/upload-url", h.Expenses.ReceiptUploadURL).
		GET("/:id/receipt/download-url", h.Expenses.ReceiptDownloadURL)

	settings := NewResource("settings", "/settings").Use(body).
		GET("", h.Settings.Get).
		PUT("", admin, h.Settings.Update)

	dashboard := NewResource("dashboard", "/dashboard").
		GET("", h.Dashboard.Get)

	imports := NewResource("import", "/import").
		GET("/history", h.Import.ListHistory).
		GET("/history/:id", h.Import.GetHistory).
		POST("/sessions/:id/validate", body, h.Import.Validate).
		POST("/sessions/:id/execute", body, h.Import.Execute).
		DELETE("/sessions/:id", h.Import.Cancel).
		GET("/:entity/fields", h.Import.Fields).
		GET("/:entity/template", h.Import.Template).
		POST("/:entity/upload", middleware.BodyLimit(limits.MaxUploadSize), h.Import.Upload)

	return []*Resource{
		auth, companies, contacts, competitors, leads, deals, pipeline,
		activities, expenses, settings, dashboard, imports,
	}
}

// RegisterSystem mounts the unversioned health and metrics endpoints.
// A nil metrics handler leaves /metrics unregistered.
func RegisterSystem(engine *gin.Engine, system *handler.SystemHandler, metricsPath string, metrics http.Handler) {
	engine.GET("/health", system.Health)
	engine.GET("/api/v1/health", system.Health)
	if metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
}
