package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/matching"
	"github.com/finkit/glcore/internal/usecase"
	"github.com/finkit/glcore/internal/usecase/mocks"
)

type reconFixture struct {
	uc            *usecase.ReconciliationUseCase
	reconRepo     *mocks.MockReconciliationRepository
	statementRepo *mocks.MockStatementRepository
	journalRepo   *mocks.MockJournalRepository
	outboxRepo    *mocks.MockOutboxRepository
	auditRepo     *mocks.MockAuditRepository
	cache         *mocks.MockCache
}

func newReconFixture(t *testing.T) *reconFixture {
	t.Helper()
	f := &reconFixture{
		reconRepo:     mocks.NewMockReconciliationRepository(),
		statementRepo: mocks.NewMockStatementRepository(),
		journalRepo:   mocks.NewMockJournalRepository(),
		outboxRepo:    mocks.NewMockOutboxRepository(),
		auditRepo:     mocks.NewMockAuditRepository(),
		cache:         mocks.NewMockCache(),
	}
	f.uc = usecase.NewReconciliationUseCase(
		mocks.NewMockTransactionManager(),
		f.reconRepo,
		f.statementRepo,
		f.journalRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
		f.cache,
		matching.DefaultConfig(),
	)
	return f
}

func seedStatement(t *testing.T, f *reconFixture, lines []domain.BankStatementLine, closing string) *domain.BankStatement {
	t.Helper()
	s := &domain.BankStatement{
		ID:             "stmt-1",
		TenantID:       "tenant-1",
		BankAccountID:  "acc-bank",
		StartDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		OpeningBalance: dec("1000"),
		ClosingBalance: dec(closing),
		Lines:          lines,
	}
	if err := f.statementRepo.Create(context.Background(), nil, s); err != nil {
		t.Fatalf("seed statement: %v", err)
	}
	return s
}

func TestReconciliationUseCase_RunMatchingFullyReconciled(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: day, Reference: "REF-1", CreditAmount: dec("500"), RunningBalance: dec("1500")},
	}, "1500")
	f.journalRepo.Book = []domain.BookTransaction{
		{ID: "bt1", AccountID: "acc-bank", Date: day, Direction: domain.Debit, Amount: dec("500"), Reference: "REF-1"},
	}
	f.journalRepo.BookBalance = dec("1500")

	result, err := f.uc.RunMatching(ctx, testActor, "stmt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MatchedLines != 1 || result.UnmatchedLines != 0 {
		t.Errorf("matched/unmatched = %d/%d, want 1/0", result.MatchedLines, result.UnmatchedLines)
	}
	if result.Matches[0].Type != domain.MatchExact || result.Matches[0].Confidence != 100 {
		t.Errorf("match = %s/%d, want EXACT/100", result.Matches[0].Type, result.Matches[0].Confidence)
	}

	recon := result.Reconciliation
	if !recon.Variance.IsZero() {
		t.Errorf("variance = %s, want 0", recon.Variance)
	}
	if recon.Status != domain.ReconciliationStatusReconciled {
		t.Errorf("status = %s, want RECONCILED", recon.Status)
	}

	stored, err := f.statementRepo.GetByID(ctx, "stmt-1")
	if err != nil {
		t.Fatalf("get statement: %v", err)
	}
	if !stored.Lines[0].Reconciled {
		t.Error("matched statement line must be flagged reconciled")
	}
}

func TestReconciliationUseCase_RunMatchingClassifiesLeftovers(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		// Bank charge the book has not seen yet.
		{ID: "l1", LineNo: 1, TransactionDate: day, Description: "MONTHLY FEE", DebitAmount: dec("15"), RunningBalance: dec("985")},
	}, "985")
	f.journalRepo.Book = []domain.BookTransaction{
		// Check issued in the books, not yet cleared at the bank.
		{ID: "bt1", AccountID: "acc-bank", Date: day, Direction: domain.Credit, Amount: dec("200"), Reference: "CHK-42"},
	}
	f.journalRepo.BookBalance = dec("800")

	result, err := f.uc.RunMatching(ctx, testActor, "stmt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotCharge, gotCheck bool
	for _, item := range result.Reconciliation.Items {
		switch item.Type {
		case domain.ItemBankCharge:
			gotCharge = item.Amount.Equal(dec("15"))
		case domain.ItemOutstandingCheck:
			gotCheck = item.Amount.Equal(dec("200"))
		}
	}
	if !gotCharge {
		t.Error("expected a 15.00 bank charge item")
	}
	if !gotCheck {
		t.Error("expected a 200.00 outstanding check item")
	}

	// adjustedBank = 985 - 200; adjustedBook = 800 - 15. Fully explained.
	if !result.Reconciliation.Variance.IsZero() {
		t.Errorf("variance = %s, want 0", result.Reconciliation.Variance)
	}
}

func TestReconciliationUseCase_RunMatchingCancelledPersistsNothing(t *testing.T) {
	f := newReconFixture(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: day, CreditAmount: dec("500"), RunningBalance: dec("1500")},
	}, "1500")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.uc.RunMatching(ctx, testActor, "stmt-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.reconRepo.Rules) != 0 {
		t.Fatal("unexpected rules mutation")
	}
	if _, err := f.reconRepo.GetByID(context.Background(), "mock-id-1"); !errors.Is(err, domain.ErrReconciliationNotFound) {
		t.Error("cancelled run must not persist a reconciliation")
	}
}

func TestReconciliationUseCase_VarianceGatekeepsApproval(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: day, Reference: "REF-1", CreditAmount: dec("500"), RunningBalance: dec("1505")},
	}, "1505")
	f.journalRepo.Book = []domain.BookTransaction{
		{ID: "bt1", AccountID: "acc-bank", Date: day, Direction: domain.Debit, Amount: dec("500"), Reference: "REF-1"},
	}
	f.journalRepo.BookBalance = dec("1500")

	result, err := f.uc.RunMatching(ctx, testActor, "stmt-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	recon := result.Reconciliation
	if !recon.Variance.Equal(dec("5")) {
		t.Fatalf("variance = %s, want 5", recon.Variance)
	}

	if _, err := f.uc.Approve(ctx, testActor, recon.ID); !errors.Is(err, domain.ErrReconciliationVariance) {
		t.Fatalf("expected ErrReconciliationVariance, got %v", err)
	}

	// Explaining the difference with a signed adjustment clears the gate.
	updated, err := f.uc.AddItem(ctx, testActor, recon.ID, usecase.AddItemInput{
		Type:        domain.ItemAdjustment,
		Description: "bank error correction",
		Date:        day,
		Amount:      dec("5"),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !updated.Variance.IsZero() {
		t.Errorf("variance after item = %s, want 0", updated.Variance)
	}
	if updated.Status != domain.ReconciliationStatusReconciled {
		t.Errorf("status = %s, want RECONCILED", updated.Status)
	}

	approved, err := f.uc.Approve(ctx, testActor, recon.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.ReconciliationStatusApproved {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}
	if len(f.outboxRepo.EventsOfType(domain.EventTypeReconciliationApproved)) != 1 {
		t.Error("expected an approval event")
	}

	// Approved sessions are frozen.
	if _, err := f.uc.AddItem(ctx, testActor, recon.ID, usecase.AddItemInput{
		Type:   domain.ItemAdjustment,
		Date:   day,
		Amount: dec("1"),
	}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation on approved session, got %v", err)
	}

	// Re-approval is a no-op, not an error.
	if _, err := f.uc.Approve(ctx, testActor, recon.ID); err != nil {
		t.Errorf("re-approve: %v", err)
	}
}

func TestReconciliationUseCase_RuleBasedMatch(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: day, Description: "TRANSFER SALARY MARCH", CreditAmount: dec("900"), RunningBalance: dec("1900")},
	}, "1900")
	f.journalRepo.Book = []domain.BookTransaction{
		{ID: "bt1", AccountID: "acc-bank", Date: day.AddDate(0, 0, 5), Direction: domain.Debit, Amount: dec("900"), Reference: "SALARY"},
	}
	f.journalRepo.BookBalance = dec("1900")
	f.reconRepo.Rules = []domain.MatchRule{
		{
			ID: "r1", TenantID: "tenant-1", Name: "salary", Priority: 10, Confidence: 85, Active: true,
			Conditions: []domain.MatchCondition{
				{Field: domain.RuleFieldDescription, Operator: domain.RuleOpContains},
				{Field: domain.RuleFieldAmount, Operator: domain.RuleOpEquals},
			},
		},
	}

	result, err := f.uc.RunMatching(ctx, testActor, "stmt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matches[0].Type != domain.MatchRuleBased {
		t.Fatalf("match type = %s, want RULE_BASED", result.Matches[0].Type)
	}
	if result.Matches[0].RuleID != "r1" || result.Matches[0].Confidence != 85 {
		t.Errorf("rule id/confidence = %s/%d, want r1/85", result.Matches[0].RuleID, result.Matches[0].Confidence)
	}
}

func TestReconciliationUseCase_RulesServedFromCache(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: day, Description: "POS 1234", CreditAmount: dec("100"), RunningBalance: dec("1100")},
	}, "1100")
	f.journalRepo.Book = []domain.BookTransaction{
		{ID: "bt1", AccountID: "acc-bank", Date: day, Direction: domain.Debit, Amount: dec("100"), Reference: "POS 1234"},
	}
	f.journalRepo.BookBalance = dec("1100")

	listCalls := 0
	f.reconRepo.ListRulesFunc = func(ctx context.Context, tenantID string) ([]domain.MatchRule, error) {
		listCalls++
		return nil, nil
	}

	if _, err := f.uc.RunMatching(ctx, testActor, "stmt-1"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := f.uc.RunMatching(ctx, testActor, "stmt-1"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if listCalls != 1 {
		t.Errorf("rule lookups = %d, want 1 (second run should hit the cache)", listCalls)
	}
}

func TestReconciliationUseCase_TenantIsolation(t *testing.T) {
	f := newReconFixture(t)
	ctx := context.Background()

	seedStatement(t, f, []domain.BankStatementLine{
		{ID: "l1", LineNo: 1, TransactionDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), CreditAmount: dec("500"), RunningBalance: dec("1500")},
	}, "1500")

	other := domain.Actor{TenantID: "tenant-2", UserID: "user-9"}
	if _, err := f.uc.RunMatching(ctx, other, "stmt-1"); !errors.Is(err, domain.ErrStatementNotFound) {
		t.Errorf("expected ErrStatementNotFound, got %v", err)
	}
}
