package parser

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

type column int

const (
	colCreditor column = iota
	colNumber
	colBalance
	colType
	colStatus
	colLimit
	colHighBalance
	colPayment
	colPastDue
	colOpened
	colBureau
	colLate30
	colLate60
	colLate90
	colLate120
)

// reAccountLine is the free-text fallback: creditor, number-like token, type word, amount.
var reAccountLine = regexp.MustCompile(`([A-Z][A-Za-z\s&.,]+)\s+([X\d-]+)\s+([A-Za-z]+)\s+([\d,]+\.?\d*)`)

var medicalTerms = []string{"medical", "hospital", "clinic", "health"}

// ExtractAccounts prefers layout table rows and only falls back to free-text matching when the
// tables produced nothing.
func ExtractAccounts(text string, tables []entity.Table, bureau constants.Bureau) []entity.Account {
	var accounts []entity.Account
	for _, t := range tables {
		accounts = append(accounts, accountsFromTable(t, bureau)...)
	}
	if len(accounts) > 0 {
		return accounts
	}
	return accountsFromText(text, bureau)
}

func accountsFromTable(t entity.Table, bureau constants.Bureau) []entity.Account {
	if len(t) < 2 {
		return nil
	}
	cols := headerColumns(t[0])

	var out []entity.Account
	for _, row := range t[1:] {
		if len(row) < 3 {
			continue
		}
		cell := func(c column) string {
			i, ok := cols[c]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		creditor := collapseSpace(cell(colCreditor))
		if creditor == "" {
			continue
		}
		a := entity.Account{
			Creditor:      creditor,
			AccountNumber: cell(colNumber),
			AccountType:   cell(colType),
			Status:        cell(colStatus),
			DateOpened:    cell(colOpened),
			Bureau:        bureau,
		}
		a.AccountNumberMasked = MaskAccountNumber(a.AccountNumber)
		a.Balance, _ = ParseAmount(cell(colBalance))
		a.CreditLimit, _ = ParseAmount(cell(colLimit))
		a.HighBalance, _ = ParseAmount(cell(colHighBalance))
		a.MonthlyPayment, _ = ParseAmount(cell(colPayment))
		a.PastDueAmount, _ = ParseAmount(cell(colPastDue))
		a.Late30, _ = ParseCount(cell(colLate30))
		a.Late60, _ = ParseCount(cell(colLate60))
		a.Late90, _ = ParseCount(cell(colLate90))
		a.Late120Plus, _ = ParseCount(cell(colLate120))
		if b, ok := constants.CanonicalizeBureau(cell(colBureau)); ok {
			a.Bureau = b
		}
		deriveFlags(&a)
		out = append(out, a)
	}
	return out
}

// headerColumns maps recognized header labels to column indexes. Unrecognized headers fall back to
// the positional layout creditor, number, balance.
func headerColumns(header []string) map[column]int {
	cols := map[column]int{}
	for i, h := range header {
		c, ok := classifyHeader(strings.ToLower(strings.TrimSpace(h)))
		if !ok {
			continue
		}
		if _, seen := cols[c]; !seen {
			cols[c] = i
		}
	}
	_, hasCreditor := cols[colCreditor]
	_, hasNumber := cols[colNumber]
	_, hasBalance := cols[colBalance]
	if hasCreditor && (hasNumber || hasBalance) {
		return cols
	}
	return map[column]int{colCreditor: 0, colNumber: 1, colBalance: 2}
}

func classifyHeader(h string) (column, bool) {
	switch {
	case h == "":
		return 0, false
	case strings.Contains(h, "120"):
		return colLate120, true
	case strings.Contains(h, "30"):
		return colLate30, true
	case strings.Contains(h, "60"):
		return colLate60, true
	case strings.Contains(h, "90"):
		return colLate90, true
	case strings.Contains(h, "high"):
		return colHighBalance, true
	case strings.Contains(h, "limit"):
		return colLimit, true
	case strings.Contains(h, "past due"):
		return colPastDue, true
	case strings.Contains(h, "balance"):
		return colBalance, true
	case containsAny(h, "status", "condition"):
		return colStatus, true
	case strings.Contains(h, "type"):
		return colType, true
	case strings.Contains(h, "open"):
		return colOpened, true
	case strings.Contains(h, "bureau"):
		return colBureau, true
	case strings.Contains(h, "payment"):
		return colPayment, true
	case containsAny(h, "creditor", "name", "company", "lender", "subscriber"):
		return colCreditor, true
	case containsAny(h, "number", "acct", "#", "account no"):
		return colNumber, true
	}
	return 0, false
}

func accountsFromText(text string, bureau constants.Bureau) []entity.Account {
	var out []entity.Account
	for _, m := range reAccountLine.FindAllStringSubmatch(text, -1) {
		number := strings.TrimSpace(m[2])
		if len(strings.Trim(number, "-")) < 4 {
			continue
		}
		a := entity.Account{
			Creditor:            collapseSpace(m[1]),
			AccountNumber:       number,
			AccountNumberMasked: MaskAccountNumber(number),
			AccountType:         m[3],
			Bureau:              bureau,
		}
		a.Balance, _ = ParseAmount(m[4])
		deriveFlags(&a)
		out = append(out, a)
	}
	return out
}

// deriveFlags sets the boolean classification flags from status, type and creditor wording.
func deriveFlags(a *entity.Account) {
	status := strings.ToLower(a.Status + " " + a.PaymentStatus)
	kind := strings.ToLower(a.AccountType)
	both := status + " " + kind

	a.IsCollection = strings.Contains(both, "collection")
	a.IsChargeOff = strings.Contains(both, "charge-off") || strings.Contains(both, "charge off") ||
		strings.Contains(both, "charged off")
	a.IsEducational = containsAny(kind, "student", "education")
	a.IsAuthorizedUser = containsAny(both, "authorized user", "authorized-user")
	a.IsMedical = containsAny(strings.ToLower(a.Creditor), medicalTerms...)
	a.IsNegative = a.IsCollection || a.IsChargeOff ||
		containsAny(status, "late", "delinquent", "past due", "repossession", "foreclosure") ||
		a.Late30+a.Late60+a.Late90+a.Late120Plus > 0
}
