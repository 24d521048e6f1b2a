package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned means one signed column whose sign decides income vs expense.
	amountSigned amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// numberStyle describes how the profile formats decimal amounts.
type numberStyle int

const (
	// stylePlain is "1234.56" with an optional sign.
	stylePlain numberStyle = iota
	// styleEuropean is "1.234,56" (dot thousands, comma decimals).
	styleEuropean
)

// Profile describes the column layout of a statement CSV format.
// Adding support for a new export is just adding a Profile here.
type Profile struct {
	Name        string
	Comma       rune
	DateCol     string
	DateLayouts []string
	DescCol     string
	CategoryCol string // optional; empty means the export carries no category
	AmountMode  amountMode
	NumberStyle numberStyle
	AmountCol   string // used when AmountMode == amountSigned
	DebitCol    string // used when AmountMode == amountSplit
	CreditCol   string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is the ordered list of export formats to try during auto-detection.
// More specific profiles come first to avoid false matches.
var profiles = []Profile{
	{
		Name:        "ledger",
		Comma:       ',',
		DateCol:     "date",
		DateLayouts: []string{"2006-01-02"},
		DescCol:     "description",
		CategoryCol: "category",
		AmountMode:  amountSigned,
		NumberStyle: stylePlain,
		AmountCol:   "amount",
	},
	{
		Name:        "card",
		Comma:       ';',
		DateCol:     "Data",
		DateLayouts: []string{"02-01-2006", "02/01/2006"},
		DescCol:     "Descrição",
		AmountMode:  amountSplit,
		NumberStyle: styleEuropean,
		DebitCol:    "Débito",
		CreditCol:   "Crédito",
	},
	{
		Name:        "account",
		Comma:       ';',
		DateCol:     "Data mov.",
		DateLayouts: []string{"02-01-2006"},
		DescCol:     "Descrição",
		AmountMode:  amountSigned,
		NumberStyle: styleEuropean,
		AmountCol:   "Montante",
	},
}
