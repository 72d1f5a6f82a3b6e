package parser

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

var (
	reInquiryHeading = regexp.MustCompile(`(?i)(?:hard\s*)?inquir(?:y|ies)[ \t:]*`)
	reInquiryPair    = regexp.MustCompile(`([A-Z][A-Za-z &.'\-]*?)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	reSectionHeading = regexp.MustCompile(`^[A-Z][A-Z &/\-]+:?$`)

	recordPatterns = []struct {
		kind string
		re   *regexp.Regexp
	}{
		{entity.RecordBankruptcy, regexp.MustCompile(`(?i)(?:chapter\s*(?:7|11|13)|bankruptcy)[ \t:]*([^\n]+)`)},
		{entity.RecordJudgment, regexp.MustCompile(`(?i)(?:civil\s*)?judgment[ \t:]*([^\n]+)`)},
		{entity.RecordTaxLien, regexp.MustCompile(`(?i)tax\s*lien[ \t:]*([^\n]+)`)},
	}
)

// ExtractInquiries reads (creditor, date) pairs from the inquiries block. The block runs from the
// heading to the next all-caps section heading. Text offers no way to tell soft pulls apart, so
// every inquiry is hard.
func ExtractInquiries(text string) []entity.Inquiry {
	block, ok := inquiryBlock(text)
	if !ok {
		return nil
	}
	var out []entity.Inquiry
	for _, m := range reInquiryPair.FindAllStringSubmatch(block, -1) {
		creditor := collapseSpace(m[1])
		if creditor == "" {
			continue
		}
		out = append(out, entity.Inquiry{Creditor: creditor, Date: m[2], Type: entity.InquiryHard})
	}
	return out
}

func inquiryBlock(text string) (string, bool) {
	loc := reInquiryHeading.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	lines := strings.Split(rest, "\n")

	var b strings.Builder
	b.WriteString(lines[0])
	for _, ln := range lines[1:] {
		if reSectionHeading.MatchString(strings.TrimSpace(ln)) {
			break
		}
		b.WriteByte('\n')
		b.WriteString(ln)
	}
	return b.String(), true
}

// ExtractPublicRecords runs one pattern per record type; every hit is an active record.
// Placeholder values such as "None" are ignored.
func ExtractPublicRecords(text string) []entity.PublicRecord {
	var out []entity.PublicRecord
	for _, p := range recordPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			details := collapseSpace(m[1])
			if isPlaceholder(details) {
				continue
			}
			out = append(out, entity.PublicRecord{Type: p.kind, Details: details, Status: "active"})
		}
	}
	return out
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.Trim(s, " .:-")) {
	case "", "none", "n/a", "na", "0", "none reported", "no records", "no public records":
		return true
	}
	return false
}
