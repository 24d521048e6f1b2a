package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/rahulk736694/typeface-finance-app/internal/encoding"
	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

// ErrUnknownFormat is returned when no profile matches the uploaded file.
var ErrUnknownFormat = errors.New("unrecognized statement format")

// Parser reads bank and ledger CSV exports and produces entry params.
// It auto-detects the format by matching column headers against known
// profiles; the caller fills in the owner before persisting.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	for _, comma := range []rune{',', ';'} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, comma)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a profile using the
// given separator. Returns the matched profile, column index map, and
// header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts entries from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	categoryIdx := -1
	if p.CategoryCol != "" {
		if i, ok := cols[p.CategoryCol]; ok {
			categoryIdx = i
		}
	}

	var entries []ledger.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(p, row, dateIdx)
		if !ok {
			// Footer or blank row.
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, entryType, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		entries = append(entries, ledger.CreateParams{
			Type:        entryType,
			Amount:      amount,
			Category:    parseCategory(row, categoryIdx, entryType),
			Description: desc,
			Date:        date,
		})
	}

	return entries, nil
}

// parseDate tries the profile's layouts against the given cell.
// Returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(p *Profile, row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseCategory maps the category cell to a known category, defaulting to
// "other" for exports without one or with values we don't track.
func parseCategory(row []string, idx int, entryType ledger.Type) ledger.Category {
	if idx >= 0 {
		c := ledger.Category(strings.ToLower(cellValue(row, idx)))
		if c.Valid() {
			return c
		}
	}

	if entryType == ledger.TypeIncome {
		return ledger.CategorySalary
	}

	return ledger.CategoryOther
}

// parseAmount extracts the amount and entry type based on the profile's amount mode.
func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, ledger.Type, bool) {
	switch p.AmountMode {
	case amountSigned:
		return parseSignedAmount(p, row, cols[p.AmountCol])
	case amountSplit:
		return parseSplitAmount(p, row, cols[p.DebitCol], cols[p.CreditCol])
	}

	return decimal.Zero, "", false
}

// parseSignedAmount handles a single signed amount column.
func parseSignedAmount(p *Profile, row []string, idx int) (decimal.Decimal, ledger.Type, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	d, err := parseNumber(p.NumberStyle, s)
	if err != nil || d.IsZero() {
		return decimal.Zero, "", false
	}

	if d.IsNegative() {
		return d.Neg(), ledger.TypeExpense, true
	}

	return d, ledger.TypeIncome, true
}

// parseSplitAmount handles separate debit/credit columns.
func parseSplitAmount(p *Profile, row []string, debitIdx, creditIdx int) (decimal.Decimal, ledger.Type, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		if d, err := parseNumber(p.NumberStyle, s); err == nil && !d.IsZero() {
			return d.Abs(), ledger.TypeExpense, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		if d, err := parseNumber(p.NumberStyle, s); err == nil && !d.IsZero() {
			return d.Abs(), ledger.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

// parseNumber parses an amount according to the profile's number style.
func parseNumber(style numberStyle, s string) (decimal.Decimal, error) {
	if style == styleEuropean {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
