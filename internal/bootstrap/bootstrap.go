// Package bootstrap builds the repository and service graph shared by the
// API server and the operator CLI.
package bootstrap

import (
	"time"

	activityapp "github.com/crm/backend/internal/application/activity"
	appevent "github.com/crm/backend/internal/application/event"
	financeapp "github.com/crm/backend/internal/application/finance"
	identityapp "github.com/crm/backend/internal/application/identity"
	importapp "github.com/crm/backend/internal/application/import"
	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/application/report"
	salesapp "github.com/crm/backend/internal/application/sales"
	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/event"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds one repository per aggregate
type Repositories struct {
	Companies     partner.CompanyRepository
	Contacts      partner.ContactRepository
	Competitors   partner.CompetitorRepository
	Leads         sales.LeadRepository
	Opportunities sales.OpportunityRepository
	Activities    activity.Repository
	Expenses      finance.ExpenseRepository
	Settings      settings.Repository
	Users         identity.UserRepository
	ImportHistory bulk.ImportHistoryRepository
}

// NewRepositories creates the GORM repositories over db
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Companies:     persistence.NewGormCompanyRepository(db),
		Contacts:      persistence.NewGormContactRepository(db),
		Competitors:   persistence.NewGormCompetitorRepository(db),
		Leads:         persistence.NewGormLeadRepository(db),
		Opportunities: persistence.NewGormOpportunityRepository(db),
		Activities:    persistence.NewGormActivityRepository(db),
		Expenses:      persistence.NewGormExpenseRepository(db),
		Settings:      persistence.NewGormSettingsRepository(db),
		Users:         persistence.NewGormUserRepository(db),
		ImportHistory: persistence.NewGormImportHistoryRepository(db),
	}
}

// Options carries the infrastructure the services run on.
// Nil Cache disables dashboard caching; nil Metrics disables business metrics.
type Options struct {
	Logger       *zap.Logger
	Cache        cache.Store
	Storage      storage.ObjectStorage
	Sessions     dataimport.SessionStore
	Metrics      *telemetry.Metrics
	DashboardTTL time.Duration
	ReceiptTTL   time.Duration
	Import       importapp.Options
}

// Services is the application layer
type Services struct {
	Bus         *event.InMemoryEventBus
	Companies   *partnerapp.CompanyService
	Contacts    *partnerapp.ContactService
	Competitors *partnerapp.CompetitorService
	Leads       *salesapp.LeadService
	Deals       *salesapp.OpportunityService
	Activities  *activityapp.Service
	Expenses    *financeapp.ExpenseService
	Settings    *settingsapp.Service
	Dashboard   *report.DashboardService
	Import      *importapp.Service
	Users       *identityapp.UserService

	sessions dataimport.SessionStore
}

// Close stops the import session store
func (s *Services) Close() {
	s.sessions.Close()
}

// NewServices wires the services and subscribes the event handlers:
// stage-change activity logging, dashboard cache invalidation and, when
// metrics are enabled, business counters.
func NewServices(repos Repositories, opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	objects := opts.Storage
	if objects == nil {
		objects = storage.NewMemoryObjectStorage()
	}

	var businessMetrics *telemetry.BusinessMetrics
	var busOpts []event.BusOption
	if opts.Metrics != nil {
		businessMetrics = telemetry.NewBusinessMetrics(opts.Metrics)
		busOpts = append(busOpts, event.WithHandledHook(businessMetrics.HandlerFailed))
	}
	bus := event.NewInMemoryEventBus(log, busOpts...)
	events := appevent.NewDispatcher(bus)

	refs := partnerapp.References{
		Leads:         repos.Leads,
		Opportunities: repos.Opportunities,
		Activities:    repos.Activities,
		Expenses:      repos.Expenses,
	}
	partners := salesapp.Partners{
		Companies:   repos.Companies,
		Contacts:    repos.Contacts,
		Competitors: repos.Competitors,
	}

	dashboard := report.NewDashboardService(report.Repositories{
		Companies:     repos.Companies,
		Contacts:      repos.Contacts,
		Competitors:   repos.Competitors,
		Leads:         repos.Leads,
		Opportunities: repos.Opportunities,
		Activities:    repos.Activities,
		Expenses:      repos.Expenses,
		Settings:      repos.Settings,
	}, opts.Cache, opts.DashboardTTL, businessMetrics)

	sessions := opts.Sessions
	if sessions == nil {
		sessions = dataimport.NewMemorySessionStore(0, 0)
	}

	s := &Services{
		Bus:         bus,
		Companies:   partnerapp.NewCompanyService(repos.Companies, repos.Contacts, refs, events),
		Contacts:    partnerapp.NewContactService(repos.Contacts, repos.Companies, refs, events),
		Competitors: partnerapp.NewCompetitorService(repos.Competitors, events),
		Leads:       salesapp.NewLeadService(repos.Leads, repos.Opportunities, repos.Activities, repos.Settings, partners, events),
		Deals:       salesapp.NewOpportunityService(repos.Opportunities, repos.Activities, repos.Expenses, repos.Settings, partners, events),
		Activities: activityapp.NewService(repos.Activities, activityapp.Targets{
			Companies:     repos.Companies,
			Contacts:      repos.Contacts,
			Leads:         repos.Leads,
			Opportunities: repos.Opportunities,
		}, events),
		Expenses: financeapp.NewExpenseService(repos.Expenses, repos.Settings, financeapp.Links{
			Companies:     repos.Companies,
			Opportunities: repos.Opportunities,
		}, objects, events, opts.ReceiptTTL),
		Settings:  settingsapp.NewService(repos.Settings, events),
		Dashboard: dashboard,
		Import: importapp.NewService(importapp.Repositories{
			Companies:     repos.Companies,
			Contacts:      repos.Contacts,
			Competitors:   repos.Competitors,
			Leads:         repos.Leads,
			Opportunities: repos.Opportunities,
			Expenses:      repos.Expenses,
			Settings:      repos.Settings,
			History:       repos.ImportHistory,
		}, sessions, objects, events, businessMetrics, opts.Import),
		Users:    identityapp.NewUserService(repos.Users, log),
		sessions: sessions,
	}

	bus.Subscribe(activityapp.NewStageChangedHandler(repos.Activities, log))
	bus.Subscribe(report.NewCacheInvalidator(dashboard, log))
	if businessMetrics != nil {
		bus.Subscribe(businessMetrics)
	}
	return s
}
