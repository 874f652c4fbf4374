package matching

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// evaluateRule reports whether every condition of the rule holds for the
// (statement line, book transaction) pair.
func evaluateRule(rule *domain.MatchRule, line *domain.BankStatementLine, txn *domain.BookTransaction) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for i := range rule.Conditions {
		if !evaluateCondition(&rule.Conditions[i], line, txn) {
			return false
		}
	}
	return true
}

func evaluateCondition(c *domain.MatchCondition, line *domain.BankStatementLine, txn *domain.BookTransaction) bool {
	switch c.Field {
	case domain.RuleFieldReference:
		return compareText(c.Operator, line.Reference, txn.Reference)
	case domain.RuleFieldDescription:
		return compareText(c.Operator, line.Description, txn.Reference)
	case domain.RuleFieldAmount:
		diff := line.SignedAmount().Sub(txn.SignedAmount()).Abs()
		switch c.Operator {
		case domain.RuleOpEquals:
			return diff.IsZero()
		case domain.RuleOpAmountDelta:
			return diff.LessThanOrEqual(c.Tolerance)
		}
	case domain.RuleFieldDate:
		delta := dateDeltaDays(line.TransactionDate, txn.Date)
		switch c.Operator {
		case domain.RuleOpEquals:
			return delta == 0
		case domain.RuleOpDateWindow:
			return decimal.NewFromInt(int64(delta)).LessThanOrEqual(c.Tolerance)
		}
	}
	return false
}

func compareText(op domain.MatchRuleOperator, lineValue, txnValue string) bool {
	lineValue = strings.TrimSpace(lineValue)
	txnValue = strings.TrimSpace(txnValue)
	if lineValue == "" || txnValue == "" {
		return false
	}
	switch op {
	case domain.RuleOpEquals:
		return strings.EqualFold(lineValue, txnValue)
	case domain.RuleOpContains:
		return strings.Contains(strings.ToLower(lineValue), strings.ToLower(txnValue))
	}
	return false
}

// sortRules orders active rules by descending priority; name breaks ties
// so rule evaluation order is stable across runs.
func sortRules(rules []domain.MatchRule) []domain.MatchRule {
	active := make([]domain.MatchRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].Name < active[j].Name
	})
	return active
}
