package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	activityapp "github.com/crm/backend/internal/application/activity"
	financeapp "github.com/crm/backend/internal/application/finance"
	partnerapp "github.com/crm/backend/internal/application/partner"
	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/bootstrap"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	openStages     = []string{"COLD", "WARM", "HOT"}
	leadSources    = []string{"website", "referral", "event", "cold_call", "social", "advertisement"}
	activityTypes  = []string{"call", "email", "meeting", "task", "note"}
	expenseKinds   = []string{"travel", "meals", "office", "software", "marketing", "training"}
	threatLevels   = []string{"low", "medium", "high"}
	lostReasons    = []string{"Chose a competitor", "No budget", "Project cancelled"}
	seedIndustries = []string{"Software", "Manufacturing", "Retail", "Healthcare", "Logistics", "Finance"}
)

// SeedResult counts the records a seed run created
type SeedResult struct {
	Competitors   int `json:"competitors"`
	Companies     int `json:"companies"`
	Contacts      int `json:"contacts"`
	Leads         int `json:"leads"`
	Opportunities int `json:"opportunities"`
	Activities    int `json:"activities"`
	Expenses      int `json:"expenses"`
}

// Seeder fills a tenant with plausible demo data
type Seeder struct {
	services *bootstrap.Services
	faker    *gofakeit.Faker
	now      func() time.Time
}

// NewSeeder creates a Seeder. A zero seed picks a random one.
func NewSeeder(services *bootstrap.Services, seed uint64) *Seeder {
	return &Seeder{services: services, faker: gofakeit.New(seed), now: time.Now}
}

// Seed creates count companies with two contacts each, count leads and
// count opportunities, plus competitors, follow-up activities and expenses.
func (s *Seeder) Seed(ctx context.Context, tenant uuid.UUID, count int) (*SeedResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	res := &SeedResult{}
	f := s.faker

	competitors := make([]uuid.UUID, 0, count/3+1)
	for i := 0; i < count/3+1; i++ {
		c, err := s.seedCompetitor(ctx, tenant)
		if err != nil {
			return res, err
		}
		if c != uuid.Nil {
			competitors = append(competitors, c)
			res.Competitors++
		}
	}

	for i := 0; i < count; i++ {
		revenue := decimal.NewFromInt(int64(f.IntRange(100, 50000)) * 1000)
		company, err := s.services.Companies.Create(ctx, tenant, partnerapp.CreateCompanyRequest{
			Name:          f.Company(),
			Industry:      f.RandomString(seedIndustries),
			Website:       f.URL(),
			Email:         f.Email(),
			Phone:         f.Phone(),
			City:          f.City(),
			Country:       f.Country(),
			EmployeeCount: f.IntRange(5, 5000),
			AnnualRevenue: &revenue,
		})
		if err != nil {
			return res, fmt.Errorf("company: %w", err)
		}
		res.Companies++

		var contactID uuid.UUID
		for j := 0; j < 2; j++ {
			contact, err := s.services.Contacts.Create(ctx, tenant, partnerapp.CreateContactRequest{
				FirstName: f.FirstName(),
				LastName:  f.LastName(),
				Email:     fmt.Sprintf("contact%d.%d@%s", i, j, f.DomainName()),
				Phone:     f.Phone(),
				JobTitle:  f.JobTitle(),
				CompanyID: &company.ID,
			})
			if err != nil {
				return res, fmt.Errorf("contact: %w", err)
			}
			contactID = contact.ID
			res.Contacts++
		}

		if err := s.seedLead(ctx, tenant, company, contactID, res); err != nil {
			return res, err
		}
		if err := s.seedOpportunity(ctx, tenant, company.ID, contactID, competitors, res); err != nil {
			return res, err
		}
		if i%2 == 0 {
			if err := s.seedExpense(ctx, tenant, company.ID, res); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// seedCompetitor retries on name clashes and gives up quietly, returning uuid.Nil
func (s *Seeder) seedCompetitor(ctx context.Context, tenant uuid.UUID) (uuid.UUID, error) {
	f := s.faker
	for attempt := 0; attempt < 3; attempt++ {
		c, err := s.services.Competitors.Create(ctx, tenant, partnerapp.CreateCompetitorRequest{
			Name:        f.Company(),
			Website:     f.URL(),
			Strengths:   f.BuzzWord(),
			ThreatLevel: f.RandomString(threatLevels),
		})
		var domainErr *shared.DomainError
		switch {
		case err == nil:
			return c.ID, nil
		case errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS":
			continue
		default:
			return uuid.Nil, fmt.Errorf("competitor: %w", err)
		}
	}
	return uuid.Nil, nil
}

func (s *Seeder) seedLead(ctx context.Context, tenant uuid.UUID, company *partnerapp.CompanyResponse, contactID uuid.UUID, res *SeedResult) error {
	f := s.faker
	value := decimal.NewFromInt(int64(f.IntRange(1, 200)) * 500)
	lead, err := s.services.Leads.Create(ctx, tenant, salesapp.CreateLeadRequest{
		Name:           f.BuzzWord() + " " + f.RandomString([]string{"rollout", "pilot", "renewal", "upgrade"}),
		ContactName:    f.Name(),
		Email:          f.Email(),
		CompanyName:    company.Name,
		Source:         f.RandomString(leadSources),
		Status:         f.RandomString(openStages),
		EstimatedValue: &value,
		CompanyID:      &company.ID,
		ContactID:      &contactID,
	})
	if err != nil {
		return fmt.Errorf("lead: %w", err)
	}
	res.Leads++

	due := s.now().Add(time.Duration(f.IntRange(-72, 240)) * time.Hour)
	if _, err := s.services.Activities.Create(ctx, tenant, activityapp.CreateActivityRequest{
		Type:    f.RandomString(activityTypes),
		Subject: "Follow up with " + lead.ContactName,
		DueAt:   &due,
		LeadID:  &lead.ID,
	}); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	res.Activities++
	return nil
}

func (s *Seeder) seedOpportunity(ctx context.Context, tenant, companyID, contactID uuid.UUID, competitors []uuid.UUID, res *SeedResult) error {
	f := s.faker
	amount := decimal.NewFromInt(int64(f.IntRange(2, 400)) * 250)
	closeDate := s.now().AddDate(0, 0, f.IntRange(7, 120))
	req := salesapp.CreateOpportunityRequest{
		Name:              f.Company() + " " + f.RandomString([]string{"license", "services", "expansion"}),
		CompanyID:         &companyID,
		ContactID:         &contactID,
		Stage:             f.RandomString(openStages),
		Amount:            &amount,
		ExpectedCloseDate: &closeDate,
	}
	if len(competitors) > 0 && f.Bool() {
		req.CompetitorIDs = []uuid.UUID{competitors[f.IntRange(0, len(competitors)-1)]}
	}
	opp, err := s.services.Deals.Create(ctx, tenant, req)
	if err != nil {
		return fmt.Errorf("opportunity: %w", err)
	}
	res.Opportunities++

	// a share of the pipeline is already closed
	switch f.IntRange(0, 9) {
	case 0:
		_, err = s.services.Deals.Move(ctx, tenant, opp.ID, salesapp.MoveRequest{Stage: "WON"})
	case 1:
		_, err = s.services.Deals.Move(ctx, tenant, opp.ID, salesapp.MoveRequest{Stage: "LOST", LostReason: f.RandomString(lostReasons)})
	}
	if err != nil {
		return fmt.Errorf("close opportunity: %w", err)
	}

	if _, err := s.services.Activities.Create(ctx, tenant, activityapp.CreateActivityRequest{
		Type:          "meeting",
		Subject:       "Review " + opp.Name,
		Description:   f.Phrase(),
		OpportunityID: &opp.ID,
	}); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	res.Activities++
	return nil
}

func (s *Seeder) seedExpense(ctx context.Context, tenant, companyID uuid.UUID, res *SeedResult) error {
	f := s.faker
	exp, err := s.services.Expenses.Create(ctx, tenant, financeapp.CreateExpenseRequest{
		Category:    f.RandomString(expenseKinds),
		Amount:      decimal.NewFromFloat(f.Float64Range(10, 2000)).Round(2),
		Currency:    "USD",
		Description: "Customer visit " + f.City(),
		Vendor:      f.Company(),
		IncurredAt:  s.now().AddDate(0, 0, -f.IntRange(0, 60)),
		CompanyID:   &companyID,
	})
	if err != nil {
		return fmt.Errorf("expense: %w", err)
	}
	res.Expenses++
	if f.Bool() {
		if _, err := s.services.Expenses.Submit(ctx, tenant, exp.ID); err != nil {
			return fmt.Errorf("submit expense: %w", err)
		}
	}
	return nil
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var (
		count int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo companies, contacts, pipeline records, activities and expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := NewSeeder(a.services, seed).Seed(cmd.Context(), a.tenant, count)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of companies to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible data (0 = random)")
	return cmd
}
