package detect

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

var (
	medicalTerms      = []string{"medical", "hospital", "clinic", "health"}
	limitAccountTypes = map[string]bool{"credit card": true, "revolving": true}
)

// accountViolations runs the rules that only need one account record.
func (d *Detector) accountViolations(a entity.Account) []entity.Violation {
	var out []entity.Violation
	ref := entity.RefOf(a)
	status := strings.ToLower(strings.TrimSpace(a.Status))

	amountsOK := validAmount(a.Balance) && validAmount(a.CreditLimit)
	if !amountsOK {
		d.skip(a, "balance rules", "non-numeric or negative balance or limit")
	}

	if amountsOK && a.CreditLimit > 0 && a.Balance > a.CreditLimit {
		out = append(out, d.newViolation(rules.BalanceExceedsLimit, ref,
			fmt.Sprintf("Balance ($%s) exceeds limit ($%s)", formatAmount(a.Balance), formatAmount(a.CreditLimit))))
	}

	if amountsOK && status == "open" && a.CreditLimit == 0 &&
		limitAccountTypes[strings.ToLower(strings.TrimSpace(a.AccountType))] {
		out = append(out, d.newViolation(rules.MissingCreditLimit, ref, "Credit limit not reported"))
	}

	if a.Late30 < 0 || a.Late60 < 0 || a.Late90 < 0 {
		d.skip(a, string(rules.ImpossibleLatePattern), "negative late counter")
	} else if a.Late90 > 0 && (a.Late30 == 0 || a.Late60 == 0) {
		out = append(out, d.newViolation(rules.ImpossibleLatePattern, ref,
			"90+ day late without corresponding 30/60 day lates"))
	}

	if amountsOK && (strings.Contains(status, "closed") || strings.Contains(status, "paid")) &&
		a.Balance > 0 && !a.IsCollection {
		out = append(out, d.newViolation(rules.ClosedWithBalance, ref,
			fmt.Sprintf("Closed/paid account shows $%s balance", formatAmount(a.Balance))))
	}

	if a.IsCollection && containsAny(strings.ToLower(a.Creditor), medicalTerms) {
		out = append(out, d.newViolation(rules.MedicalCollectionNCAP, ref,
			"Medical collection - may be eligible for NCAP removal"))
	}

	if a.IsAuthorizedUser && a.IsNegative {
		out = append(out, d.newViolation(rules.AuthorizedUserNegative, ref,
			"Authorized user account showing negative history"))
	}

	return out
}

func (d *Detector) skip(a entity.Account, rule, reason string) {
	d.logger.Debug("rule skipped",
		"rule", rule,
		"creditor", a.Creditor,
		"account", a.AccountNumberMasked,
		"reason", reason,
	)
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// formatAmount renders 1200 as "1200" and 99.5 as "99.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
