// Package ingest parses external bank statements into normalized line records.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// Format identifies the statement file format.
type Format string

const (
	// FormatCSV is a delimited tabular statement:
	// date,description,reference,debit,credit,balance
	FormatCSV Format = "csv"
)

// RowDiagnostic describes one skipped statement row.
type RowDiagnostic struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is a parsed statement: normalized lines plus derived balances.
type Result struct {
	Lines          []domain.BankStatementLine
	SkippedRows    int
	Diagnostics    []RowDiagnostic
	StartDate      time.Time
	EndDate        time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
}

var requiredColumns = []string{"date", "description", "reference", "debit", "credit", "balance"}

// Parse parses raw statement content. Malformed rows are skipped and
// reported, never abort the import; zero valid rows is a failure.
func Parse(ctx context.Context, raw string, format Format) (*Result, error) {
	if format != FormatCSV {
		return nil, fmt.Errorf("%w: unsupported statement format %q", domain.ErrValidation, format)
	}
	return parseCSV(ctx, strings.NewReader(raw))
}

func parseCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImportNoValidRows, err)
	}
	col := columnIndex(header)
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrValidation, name)
		}
	}

	res := &Result{}
	rowNo := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNo++
		if err != nil {
			res.skip(rowNo, fmt.Sprintf("unreadable row: %v", err))
			continue
		}

		line, reason := parseRow(rec, col)
		if reason != "" {
			res.skip(rowNo, reason)
			continue
		}
		line.LineNo = rowNo
		res.Lines = append(res.Lines, line)
	}

	if len(res.Lines) == 0 {
		return nil, fmt.Errorf("%w: %d rows skipped", domain.ErrImportNoValidRows, res.SkippedRows)
	}

	res.derive()
	return res, nil
}

func parseRow(rec []string, col map[string]int) (domain.BankStatementLine, string) {
	var line domain.BankStatementLine

	get := func(name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseDate(get("date"))
	if err != nil {
		return line, fmt.Sprintf("bad date %q", get("date"))
	}

	debit, err := parseAmount(get("debit"))
	if err != nil {
		return line, fmt.Sprintf("bad debit amount %q", get("debit"))
	}
	credit, err := parseAmount(get("credit"))
	if err != nil {
		return line, fmt.Sprintf("bad credit amount %q", get("credit"))
	}
	if debit.IsNegative() || credit.IsNegative() {
		return line, "negative debit/credit amount"
	}
	if debit.IsZero() && credit.IsZero() {
		return line, "row has neither debit nor credit"
	}

	balance, err := parseAmount(get("balance"))
	if err != nil {
		return line, fmt.Sprintf("bad balance %q", get("balance"))
	}

	line.TransactionDate = date
	line.Description = get("description")
	line.Reference = get("reference")
	line.DebitAmount = debit
	line.CreditAmount = credit
	line.RunningBalance = balance
	return line, ""
}

// derive fills statement-level fields from lines: date range, opening
// balance (first line's balance minus its own net movement) and closing
// balance (last line's balance). Lines keep statement order; derivation
// uses chronological order with statement order as tiebreak.
func (r *Result) derive() {
	idx := make([]int, len(r.Lines))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return r.Lines[idx[a]].TransactionDate.Before(r.Lines[idx[b]].TransactionDate)
	})

	first := &r.Lines[idx[0]]
	last := &r.Lines[idx[len(idx)-1]]

	r.StartDate = first.TransactionDate
	r.EndDate = last.TransactionDate
	r.OpeningBalance = first.RunningBalance.Sub(first.NetMovement())
	r.ClosingBalance = last.RunningBalance
}

func (r *Result) skip(row int, reason string) {
	r.SkippedRows++
	r.Diagnostics = append(r.Diagnostics, RowDiagnostic{Row: row, Reason: reason})
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, f := range dateFormats {
		t, err := time.Parse(f, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseAmount tolerates empty cells, comma decimal separators and
// thousand separators.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	s = strings.ReplaceAll(s, " ", "")
	return decimal.NewFromString(s)
}
