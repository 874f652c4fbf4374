package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeVariance(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		book      string
		items     []ReconciliationItem
		want      string
	}{
		{
			name:      "identical balances, no items",
			statement: "1500", book: "1500",
			want: "0",
		},
		{
			name:      "unexplained difference",
			statement: "1500", book: "1495",
			want: "5",
		},
		{
			name:      "deposit in transit explains higher book balance",
			statement: "1400", book: "1500",
			items: []ReconciliationItem{{Type: ItemDepositInTransit, Amount: d("100")}},
			want:  "0",
		},
		{
			name:      "outstanding check explains lower book balance",
			statement: "1550", book: "1500",
			items: []ReconciliationItem{{Type: ItemOutstandingCheck, Amount: d("50")}},
			want:  "0",
		},
		{
			name:      "bank charge not yet booked",
			statement: "1490", book: "1500",
			items: []ReconciliationItem{{Type: ItemBankCharge, Amount: d("10")}},
			want:  "0",
		},
		{
			name:      "bank interest not yet booked",
			statement: "1505", book: "1500",
			items: []ReconciliationItem{{Type: ItemBankInterest, Amount: d("5")}},
			want:  "0",
		},
		{
			name:      "signed adjustment closes residual variance",
			statement: "1500", book: "1495",
			items: []ReconciliationItem{{Type: ItemAdjustment, Amount: d("5")}},
			want:  "0",
		},
		{
			name:      "mixed items net out",
			statement: "1340", book: "1500",
			items: []ReconciliationItem{
				{Type: ItemDepositInTransit, Amount: d("200")},
				{Type: ItemOutstandingCheck, Amount: d("30")},
				{Type: ItemBankCharge, Amount: d("10")},
			},
			want: "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVariance(d(tt.statement), d(tt.book), tt.items)
			if !got.Equal(d(tt.want)) {
				t.Errorf("expected variance %s, got %s", tt.want, got)
			}
		})
	}
}

func TestReconciliationCanApprove(t *testing.T) {
	epsilon := d("0.01")

	r := BankReconciliation{Variance: d("5.00")}
	if r.CanApprove(epsilon) {
		t.Error("variance 5.00 must block approval")
	}

	r.Variance = d("0.01")
	if !r.CanApprove(epsilon) {
		t.Error("variance within epsilon must allow approval")
	}

	r.Variance = d("-0.005")
	if !r.CanApprove(epsilon) {
		t.Error("negative variance within epsilon must allow approval")
	}
}

func TestStatementLineSignedAmount(t *testing.T) {
	in := BankStatementLine{CreditAmount: d("500")}
	if !in.SignedAmount().Equal(d("500")) {
		t.Errorf("credit line: expected 500, got %s", in.SignedAmount())
	}

	out := BankStatementLine{DebitAmount: d("120")}
	if !out.SignedAmount().Equal(d("-120")) {
		t.Errorf("debit line: expected -120, got %s", out.SignedAmount())
	}
}

func TestBookTransactionSignedAmount(t *testing.T) {
	deposit := BookTransaction{Direction: Debit, Amount: d("500")}
	if !deposit.SignedAmount().Equal(d("500")) {
		t.Errorf("book debit on bank account is money in, got %s", deposit.SignedAmount())
	}

	payment := BookTransaction{Direction: Credit, Amount: d("200")}
	if !payment.SignedAmount().Equal(d("-200")) {
		t.Errorf("book credit on bank account is money out, got %s", payment.SignedAmount())
	}
}
