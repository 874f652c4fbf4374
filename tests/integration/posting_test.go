package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/tests/testutil"
)

func TestPostingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestServer(t, testDB.Pool)

	// Open a period covering March 2025.
	var period dto.PeriodResponse
	doJSON(t, router, http.MethodPost, "/api/v1/periods", dto.CreatePeriodRequest{
		Code:        "2025-03",
		StartDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		FiscalYear:  2025,
		FiscalMonth: 3,
	}, http.StatusCreated, &period)

	// Chart of accounts: cash and revenue.
	var cash, revenue dto.AccountResponse
	doJSON(t, router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", Type: "ASSET", Currency: "USD",
	}, http.StatusCreated, &cash)
	doJSON(t, router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Code: "4000", Name: "Sales", Type: "REVENUE", Currency: "USD",
	}, http.StatusCreated, &revenue)

	// Post a balanced entry.
	var entry dto.EntryResponse
	doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "cash sale",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Direction: "DEBIT", Amount: decimal.RequireFromString("150.00"), Reference: "INV-1"},
			{AccountCode: "4000", Direction: "CREDIT", Amount: decimal.RequireFromString("150.00"), Reference: "INV-1"},
		},
	}, http.StatusCreated, &entry)

	if entry.Status != "POSTED" {
		t.Fatalf("expected posted entry, got %s", entry.Status)
	}
	if entry.PeriodID != period.ID {
		t.Fatalf("expected entry assigned to period %s, got %s", period.ID, entry.PeriodID)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(entry.Lines))
	}

	// An unbalanced entry is rejected.
	doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
		EntryDate:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Description: "unbalanced",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Direction: "DEBIT", Amount: decimal.RequireFromString("10.00")},
			{AccountCode: "4000", Direction: "CREDIT", Amount: decimal.RequireFromString("9.00")},
		},
	}, http.StatusBadRequest, nil)

	// Trial balance over the period stays in balance.
	var tb dto.TrialBalanceResponse
	doJSON(t, router, http.MethodGet, "/api/v1/trial-balance?start=2025-03-01&end=2025-03-31", nil, http.StatusOK, &tb)

	if !tb.TotalDebits.Equal(tb.TotalCredits) {
		t.Fatalf("trial balance out of balance: debits %s credits %s", tb.TotalDebits, tb.TotalCredits)
	}
	if !tb.TotalDebits.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected total debits 150.00, got %s", tb.TotalDebits)
	}
	if !tb.EquationBalanced {
		t.Fatalf("expected accounting equation to hold")
	}

	// Reverse the entry and confirm the trial balance nets to zero.
	var reversal dto.EntryResponse
	doJSON(t, router, http.MethodPost, "/api/v1/entries/"+entry.ID+"/reverse", dto.ReverseEntryRequest{
		Description: "undo cash sale",
	}, http.StatusCreated, &reversal)

	if reversal.ReversalOf != entry.ID {
		t.Fatalf("expected reversal to reference %s, got %s", entry.ID, reversal.ReversalOf)
	}

	doJSON(t, router, http.MethodGet, "/api/v1/trial-balance?start=2025-03-01&end=2025-03-31&include_zero=true", nil, http.StatusOK, &tb)
	if !tb.TotalDebits.Equal(tb.TotalCredits) {
		t.Fatalf("trial balance out of balance after reversal: debits %s credits %s", tb.TotalDebits, tb.TotalCredits)
	}
	if !tb.NetIncome.IsZero() {
		t.Fatalf("expected zero net income after reversal, got %s", tb.NetIncome)
	}
}

func TestPeriodCloseFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestServer(t, testDB.Pool)

	var period dto.PeriodResponse
	doJSON(t, router, http.MethodPost, "/api/v1/periods", dto.CreatePeriodRequest{
		Code:        "2025-04",
		StartDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		FiscalYear:  2025,
		FiscalMonth: 4,
	}, http.StatusCreated, &period)

	doJSON(t, router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", Type: "ASSET", Currency: "USD",
	}, http.StatusCreated, nil)
	doJSON(t, router, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Code: "4000", Name: "Sales", Type: "REVENUE", Currency: "USD",
	}, http.StatusCreated, nil)

	var summary dto.ClosingSummaryResponse
	doJSON(t, router, http.MethodPost, "/api/v1/periods/"+period.ID+"/close", nil, http.StatusOK, &summary)

	if !summary.Balanced {
		t.Fatalf("expected empty period to close balanced")
	}

	// Posting into a closed period is rejected.
	doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
		EntryDate:   time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Description: "late entry",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "1000", Direction: "DEBIT", Amount: decimal.RequireFromString("10.00")},
			{AccountCode: "4000", Direction: "CREDIT", Amount: decimal.RequireFromString("10.00")},
		},
	}, http.StatusConflict, nil)

	// Reopening requires a reason, then posting works again.
	doJSON(t, router, http.MethodPost, "/api/v1/periods/"+period.ID+"/reopen", dto.ReopenPeriodRequest{}, http.StatusBadRequest, nil)

	var reopened dto.PeriodResponse
	doJSON(t, router, http.MethodPost, "/api/v1/periods/"+period.ID+"/reopen", dto.ReopenPeriodRequest{
		Reason: "missed accrual",
	}, http.StatusOK, &reopened)

	if reopened.Status != "OPEN" {
		t.Fatalf("expected reopened period to be OPEN, got %s", reopened.Status)
	}
}
