// Package matching pairs bank statement lines against book transactions.
//
// The pass is deterministic: given the same statement, book transactions
// and rule set it always yields the same matches. Statement line order is
// the tie-breaker, so the earliest line wins a contested candidate.
package matching

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// Config tunes the heuristic stages of the matching pass.
type Config struct {
	// AmountTolerance is the maximum absolute amount difference a fuzzy
	// match accepts.
	AmountTolerance decimal.Decimal
	// DateWindowDays is the maximum date distance a fuzzy match accepts.
	DateWindowDays int
	// MinConfidence floors fuzzy confidence; candidates scoring below it
	// are discarded as non-matches.
	MinConfidence int
	// StaleAfterDays flags reconciling items older than this relative to
	// the statement end date.
	StaleAfterDays int
}

// DefaultConfig mirrors the back-office defaults.
func DefaultConfig() Config {
	return Config{
		AmountTolerance: decimal.RequireFromString("0.01"),
		DateWindowDays:  3,
		MinConfidence:   40,
		StaleAfterDays:  60,
	}
}

// Input is everything a single matching pass reads.
type Input struct {
	Statement *domain.BankStatement
	Book      []domain.BookTransaction
	Rules     []domain.MatchRule
}

// Outcome is the result of one pass. Nothing is persisted here; the
// caller discards the outcome wholesale on cancellation.
type Outcome struct {
	Matches        []domain.ReconciliationMatch
	Items          []domain.ReconciliationItem
	MatchedLines   int
	UnmatchedLines int
}

// Run executes one matching pass. Priority order per line:
// Exact, then user rules, then fuzzy, then unmatched. A book
// transaction is consumed by at most one line.
func Run(ctx context.Context, in Input, cfg Config) (*Outcome, error) {
	book := make([]domain.BookTransaction, len(in.Book))
	copy(book, in.Book)
	sort.SliceStable(book, func(i, j int) bool {
		if !book[i].Date.Equal(book[j].Date) {
			return book[i].Date.Before(book[j].Date)
		}
		return book[i].ID < book[j].ID
	})

	rules := sortRules(in.Rules)
	used := make(map[int]bool, len(book))
	out := &Outcome{}

	for li := range in.Statement.Lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := &in.Statement.Lines[li]

		m := matchLine(line, book, used, rules, cfg)
		if m.Type == domain.MatchUnmatched {
			out.UnmatchedLines++
		} else {
			out.MatchedLines++
		}
		out.Matches = append(out.Matches, m)
	}

	out.Items = classifyLeftovers(in.Statement, book, used, out.Matches, cfg)
	return out, nil
}

func matchLine(line *domain.BankStatementLine, book []domain.BookTransaction, used map[int]bool, rules []domain.MatchRule, cfg Config) domain.ReconciliationMatch {
	// Stage 1: exact. Same sign-adjusted amount, equal reference, same day.
	for bi := range book {
		if used[bi] {
			continue
		}
		txn := &book[bi]
		if !line.SignedAmount().Equal(txn.SignedAmount()) {
			continue
		}
		if line.Reference == "" || line.Reference != txn.Reference {
			continue
		}
		if dateDeltaDays(line.TransactionDate, txn.Date) != 0 {
			continue
		}
		used[bi] = true
		return domain.ReconciliationMatch{
			StatementLineID:   line.ID,
			BookTransactionID: txn.ID,
			Type:              domain.MatchExact,
			Confidence:        100,
		}
	}

	// Stage 2: user rules in descending priority; first satisfied rule wins.
	for ri := range rules {
		rule := &rules[ri]
		for bi := range book {
			if used[bi] {
				continue
			}
			if evaluateRule(rule, line, &book[bi]) {
				used[bi] = true
				return domain.ReconciliationMatch{
					StatementLineID:   line.ID,
					BookTransactionID: book[bi].ID,
					Type:              domain.MatchRuleBased,
					Confidence:        rule.Confidence,
					RuleID:            rule.ID,
					DateDeltaDays:     dateDeltaDays(line.TransactionDate, book[bi].Date),
				}
			}
		}
	}

	// Stage 3: fuzzy. Amount within tolerance, date within window,
	// confidence decaying with date distance.
	best := -1
	bestConfidence := 0
	bestDelta := 0
	bestDiff := decimal.Zero
	for bi := range book {
		if used[bi] {
			continue
		}
		txn := &book[bi]
		diff := line.SignedAmount().Sub(txn.SignedAmount()).Abs()
		if diff.GreaterThan(cfg.AmountTolerance) {
			continue
		}
		delta := dateDeltaDays(line.TransactionDate, txn.Date)
		if delta > cfg.DateWindowDays {
			continue
		}
		confidence := 90 - 10*delta
		if confidence < cfg.MinConfidence {
			continue
		}
		if best == -1 || confidence > bestConfidence || (confidence == bestConfidence && diff.LessThan(bestDiff)) {
			best = bi
			bestConfidence = confidence
			bestDelta = delta
			bestDiff = diff
		}
	}
	if best >= 0 {
		used[best] = true
		return domain.ReconciliationMatch{
			StatementLineID:   line.ID,
			BookTransactionID: book[best].ID,
			Type:              domain.MatchFuzzy,
			Confidence:        bestConfidence,
			DateDeltaDays:     bestDelta,
		}
	}

	return domain.ReconciliationMatch{
		StatementLineID: line.ID,
		Type:            domain.MatchUnmatched,
		Confidence:      0,
	}
}

// classifyLeftovers turns unmatched statement lines and unconsumed book
// transactions into reconciling items, classified by direction and age.
func classifyLeftovers(stmt *domain.BankStatement, book []domain.BookTransaction, used map[int]bool, matches []domain.ReconciliationMatch, cfg Config) []domain.ReconciliationItem {
	unmatchedLine := make(map[string]bool)
	for _, m := range matches {
		if m.Type == domain.MatchUnmatched {
			unmatchedLine[m.StatementLineID] = true
		}
	}

	var items []domain.ReconciliationItem
	for i := range stmt.Lines {
		line := &stmt.Lines[i]
		if !unmatchedLine[line.ID] {
			continue
		}
		itemType := domain.ItemBankInterest
		amount := line.CreditAmount
		if !line.DebitAmount.IsZero() {
			itemType = domain.ItemBankCharge
			amount = line.DebitAmount
		}
		items = append(items, domain.ReconciliationItem{
			Type:        itemType,
			Description: line.Description,
			Reference:   line.Reference,
			Date:        line.TransactionDate,
			Amount:      amount,
			Aged:        isStale(line.TransactionDate, stmt.EndDate, cfg.StaleAfterDays),
		})
	}

	for bi := range book {
		if used[bi] {
			continue
		}
		txn := &book[bi]
		itemType := domain.ItemDepositInTransit
		if txn.Direction == domain.Credit {
			itemType = domain.ItemOutstandingCheck
		}
		items = append(items, domain.ReconciliationItem{
			Type:      itemType,
			Reference: txn.Reference,
			Date:      txn.Date,
			Amount:    txn.Amount,
			Aged:      isStale(txn.Date, stmt.EndDate, cfg.StaleAfterDays),
		})
	}

	return items
}

func isStale(date, asOf time.Time, staleAfterDays int) bool {
	if staleAfterDays <= 0 {
		return false
	}
	return asOf.Sub(date) > time.Duration(staleAfterDays)*24*time.Hour
}

func dateDeltaDays(a, b time.Time) int {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}
	return int(delta / (24 * time.Hour))
}
