package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

const (
	negativeRetention = 7 * 365 * 24 * time.Hour
	inquiryRetention  = 2 * 365 * 24 * time.Hour
)

// crossBureauDiscrepancies groups records by account identity. A group of two or more records
// yields one discrepancy per differing field. Groups are reported in first-seen order.
func (d *Detector) crossBureauDiscrepancies(accounts []entity.Account) []entity.Discrepancy {
	var order []string
	groups := map[string][]entity.Account{}
	for _, a := range accounts {
		key := strings.TrimSpace(a.IdentityKey())
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	info, _ := d.catalog.Violation(rules.CrossBureauDiscrepancy)

	var out []entity.Discrepancy
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		masked := group[0].AccountNumberMasked

		balances := make([]string, len(group))
		statuses := make([]string, len(group))
		for i, a := range group {
			balances[i] = formatAmount(a.Balance)
			statuses[i] = a.Status
		}
		if distinct(balances) {
			out = append(out, entity.Discrepancy{
				Type:          rules.CrossBureauDiscrepancy,
				AccountNumber: masked,
				Field:         "balance",
				Values:        balances,
				Description:   fmt.Sprintf("Balance varies across bureaus: [%s]", strings.Join(balances, ", ")),
				Severity:      info.Severity,
				FCRASection:   info.FCRASection,
			})
		}
		if distinct(statuses) {
			out = append(out, entity.Discrepancy{
				Type:          rules.CrossBureauDiscrepancy,
				AccountNumber: masked,
				Field:         "status",
				Values:        statuses,
				Description:   fmt.Sprintf("Status varies across bureaus: [%s]", strings.Join(statuses, ", ")),
				Severity:      info.Severity,
				FCRASection:   info.FCRASection,
			})
		}
	}
	return out
}

func (d *Detector) outdatedNegatives(accounts []entity.Account, now time.Time) []entity.Violation {
	cutoff := now.Add(-negativeRetention)
	var out []entity.Violation
	for _, a := range accounts {
		if !a.IsNegative || a.DateOpened == "" {
			continue
		}
		opened, err := time.Parse("01/2006", strings.TrimSpace(a.DateOpened))
		if err != nil {
			d.skip(a, string(rules.OutdatedNegative), "date opened is not MM/YYYY")
			continue
		}
		if opened.Before(cutoff) {
			out = append(out, d.newViolation(rules.OutdatedNegative, entity.RefOf(a),
				fmt.Sprintf("Negative item older than 7 years (opened %s)", a.DateOpened)))
		}
	}
	return out
}

func (d *Detector) outdatedInquiries(inquiries []entity.Inquiry, now time.Time) []entity.Violation {
	cutoff := now.Add(-inquiryRetention)
	var out []entity.Violation
	for _, q := range inquiries {
		if q.Type != entity.InquiryHard || q.Date == "" {
			continue
		}
		date, err := time.Parse("01/02/2006", strings.TrimSpace(q.Date))
		if err != nil {
			d.logger.Debug("rule skipped", "rule", rules.OutdatedInquiry, "creditor", q.Creditor, "reason", "inquiry date is not MM/DD/YYYY")
			continue
		}
		if date.Before(cutoff) {
			out = append(out, d.newViolation(rules.OutdatedInquiry, &entity.AccountRef{Creditor: q.Creditor},
				fmt.Sprintf("Hard inquiry from %s exceeds 2-year limit", q.Date)))
		}
	}
	return out
}

// publicRecordViolations flags every tax lien. Bankruptcy age is not evaluated: records carry no
// reliable filing date.
func (d *Detector) publicRecordViolations(records []entity.PublicRecord) []entity.Violation {
	var out []entity.Violation
	for _, r := range records {
		if r.Type == entity.RecordTaxLien {
			out = append(out, d.newViolation(rules.TaxLienNCAP, nil, "Tax lien may be eligible for NCAP removal"))
		}
	}
	return out
}

func distinct(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
