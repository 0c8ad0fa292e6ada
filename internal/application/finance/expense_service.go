package finance

import (
	"context"
	"time"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/report"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Links holds the repositories of records an expense may be linked to
type Links struct {
	Companies     partner.CompanyRepository
	Opportunities sales.OpportunityRepository
}

// ExpenseService handles expense tracking, approval and receipts
type ExpenseService struct {
	expenseRepo  finance.ExpenseRepository
	settingsRepo settings.Repository
	links        Links
	storage      storage.ObjectStorage
	events       *event.Dispatcher
	receiptTTL   time.Duration
	now          func() time.Time
}

// NewExpenseService creates a new ExpenseService. receiptTTL bounds the
// lifetime of presigned receipt URLs.
func NewExpenseService(
	expenseRepo finance.ExpenseRepository,
	settingsRepo settings.Repository,
	links Links,
	objectStorage storage.ObjectStorage,
	events *event.Dispatcher,
	receiptTTL time.Duration,
) *ExpenseService {
	if receiptTTL <= 0 {
		receiptTTL = 15 * time.Minute
	}
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		settingsRepo: settingsRepo,
		links:        links,
		storage:      objectStorage,
		events:       events,
		receiptTTL:   receiptTTL,
		now:          time.Now,
	}
}

// Create records a draft expense; the currency defaults to the tenant's
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	currency := req.Currency
	if currency == "" {
		prefs, err := settings.Load(ctx, s.settingsRepo, tenantID)
		if err != nil {
			return nil, err
		}
		currency = prefs.Currency
	}

	expense, err := finance.NewExpense(tenantID, finance.ExpenseDetails{
		Category:      finance.ExpenseCategory(req.Category),
		Amount:        req.Amount,
		Currency:      currency,
		Description:   req.Description,
		Vendor:        req.Vendor,
		IncurredAt:    req.IncurredAt,
		CompanyID:     req.CompanyID,
		OpportunityID: req.OpportunityID,
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		expense.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.checkLinks(ctx, tenantID, expense); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, expense)

	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := filter.toDomain()

	expenses, err := s.expenseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// Update applies a partial update to a draft or rejected expense
func (s *ExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Update(req.applyTo(expense.Details())); err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, tenantID, expense); err != nil {
		return nil, err
	}
	return s.save(ctx, expense)
}

// Delete removes a draft or rejected expense together with its receipt
func (s *ExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := expense.CanDelete(); err != nil {
		return err
	}
	if err := s.expenseRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Expense")
	}

	if expense.HasReceipt() {
		if err := s.storage.DeleteObject(ctx, expense.ReceiptKey); err != nil {
			logger.L(ctx).Warn("Failed to delete expense receipt",
				zap.String("expense_id", id.String()),
				zap.String("storage_key", expense.ReceiptKey),
				zap.Error(err),
			)
		}
	}

	s.events.Publish(ctx, finance.NewExpenseEvent(finance.EventTypeExpenseDeleted, expense))
	return nil
}

// Submit sends an expense for approval
func (s *ExpenseService) Submit(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Submit(); err != nil {
		return nil, err
	}
	return s.save(ctx, expense)
}

// Approve approves a submitted expense
func (s *ExpenseService) Approve(ctx context.Context, tenantID, id, reviewerID uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Approve(reviewerID); err != nil {
		return nil, err
	}
	return s.save(ctx, expense)
}

// Reject sends a submitted expense back with a reason
func (s *ExpenseService) Reject(ctx context.Context, tenantID, id, reviewerID uuid.UUID, req RejectExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := expense.Reject(reviewerID, req.Reason); err != nil {
		return nil, err
	}
	return s.save(ctx, expense)
}

// ReceiptUploadURL presigns an upload for the expense receipt and records
// its key on the expense
func (s *ExpenseService) ReceiptUploadURL(ctx context.Context, tenantID, id uuid.UUID, req ReceiptUploadRequest) (*ReceiptURLResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !expense.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Receipts can only be changed on draft or rejected expenses")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeFor(req.FileName)
	}
	key := storage.ReceiptKey(tenantID, expense.ID, req.FileName)

	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.receiptTTL)
	if err != nil {
		return nil, err
	}

	previous := expense.ReceiptKey
	if err := expense.AttachReceipt(key); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	if previous != "" && previous != key {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			logger.L(ctx).Warn("Failed to delete replaced receipt", zap.String("storage_key", previous), zap.Error(err))
		}
	}

	return &ReceiptURLResponse{URL: url, Key: key, ContentType: contentType, ExpiresAt: expiresAt}, nil
}

// ReceiptDownloadURL presigns a download of the expense receipt
func (s *ExpenseService) ReceiptDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*ReceiptURLResponse, error) {
	expense, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !expense.HasReceipt() {
		return nil, shared.NotFound("Receipt")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, expense.ReceiptKey, s.receiptTTL)
	if err != nil {
		return nil, err
	}
	return &ReceiptURLResponse{URL: url, Key: expense.ReceiptKey, ExpiresAt: expiresAt}, nil
}

// Summary totals spend by category and month over [from, to). Without a
// range the current fiscal year is used.
func (s *ExpenseService) Summary(ctx context.Context, tenantID uuid.UUID, req SummaryRequest) (*SummaryResponse, error) {
	prefs, err := settings.Load(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}

	from, to := prefs.FiscalYearRange(s.now())
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "The end of the range must be after its start")
	}

	expenses, err := s.expenseRepo.FindIncurredBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	months := report.MonthsBetween(from, to)
	byMonth := make(map[string]decimal.Decimal, len(months))
	byCategory := make(map[finance.ExpenseCategory]*CategoryTotal)
	summary := &SummaryResponse{
		From:         from,
		To:           to,
		Currency:     prefs.Currency,
		Total:        decimal.Zero,
		StatusCounts: map[string]int{},
		Budget:       prefs.MonthlyExpenseBudget.Mul(decimal.NewFromInt(int64(len(months)))),
		BudgetUsed:   decimal.Zero,
	}

	for _, e := range expenses {
		summary.StatusCounts[string(e.Status)]++
		if !e.Status.CountsAsSpent() {
			continue
		}
		summary.Count++
		summary.Total = summary.Total.Add(e.Amount)
		month := report.MonthKey(e.IncurredAt, from.Location())
		byMonth[month] = byMonth[month].Add(e.Amount)
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: string(e.Category), Amount: decimal.Zero}
			byCategory[e.Category] = ct
		}
		ct.Count++
		ct.Amount = ct.Amount.Add(e.Amount)
	}

	summary.ByMonth = make([]MonthTotal, len(months))
	for i, m := range months {
		summary.ByMonth[i] = MonthTotal{Month: m, Amount: byMonth[m]}
	}
	summary.ByCategory = make([]CategoryTotal, 0, len(byCategory))
	for _, c := range finance.ExpenseCategories {
		if ct, ok := byCategory[c]; ok {
			summary.ByCategory = append(summary.ByCategory, *ct)
		}
	}
	if summary.Budget.IsPositive() {
		summary.BudgetUsed = summary.Total.Mul(hundred).Div(summary.Budget).Round(2)
	}
	return summary, nil
}

func (s *ExpenseService) find(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Expense")
	}
	return expense, nil
}

func (s *ExpenseService) save(ctx context.Context, expense *finance.Expense) (*ExpenseResponse, error) {
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, expense)
	response := ToExpenseResponse(expense)
	return &response, nil
}

func (s *ExpenseService) checkLinks(ctx context.Context, tenantID uuid.UUID, expense *finance.Expense) error {
	if expense.CompanyID != nil {
		if _, err := s.links.Companies.FindByIDForTenant(ctx, tenantID, *expense.CompanyID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError("INVALID_COMPANY", "Referenced company does not exist")
			}
			return err
		}
	}
	if expense.OpportunityID != nil {
		if _, err := s.links.Opportunities.FindByIDForTenant(ctx, tenantID, *expense.OpportunityID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError("INVALID_OPPORTUNITY", "Referenced opportunity does not exist")
			}
			return err
		}
	}
	return nil
}
