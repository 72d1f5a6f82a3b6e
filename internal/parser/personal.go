package parser

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

var (
	reName     = regexp.MustCompile(`(?im)^[ \t]*(?:consumer[ \t]+)?(?:full[ \t]+)?(?:name|consumer)[ \t]*[:\t ][ \t]*([A-Za-z][A-Za-z .'\-]*[A-Za-z])`)
	reAddress  = regexp.MustCompile(`(?i)(?:current\s*)?address[:\s]+([^\n]+)(?:\n([^\n]+))?`)
	reCityLine = regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)
	reSSN      = regexp.MustCompile(`(?i)(?:ssn|social(?:\s+security)?(?:\s+(?:number|no\.?|#))?)[:\s#]+(\d{3}-?\d{2}-?\d{4}|[X*]{3}-?[X*]{2}-?\d{4})`)
	reDOB      = regexp.MustCompile(`(?i)(?:dob|date\s*of\s*birth)[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

func ExtractPersonalInfo(text string) entity.PersonalInfo {
	var info entity.PersonalInfo
	if v, ok := findName(text); ok {
		info.Name = &v
	}
	if v, ok := findAddress(text); ok {
		info.Address = &v
	}
	if v, ok := findSSNLast4(text); ok {
		info.SSNLast4 = &v
	}
	if v, ok := findDOB(text); ok {
		info.DateOfBirth = &v
	}
	return info
}

// findName skips table headers such as "Name    Number    Balance": a label followed only by a
// wide gap is a column heading, not a value.
func findName(text string) (string, bool) {
	for _, m := range reName.FindAllStringSubmatch(text, -1) {
		sep := m[0][:len(m[0])-len(m[1])]
		if !strings.Contains(sep, ":") && strings.Contains(sep, "  ") {
			continue
		}
		if name := collapseSpace(firstColumn(m[1])); name != "" {
			return name, true
		}
	}
	return "", false
}

// findAddress keeps the second line only when it looks like "City, ST 12345".
func findAddress(text string) (string, bool) {
	m := reAddress.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	addr := firstColumn(m[1])
	if next := firstColumn(m[2]); next != "" && reCityLine.MatchString(next) {
		addr = addr + ", " + next
	}
	addr = collapseSpace(addr)
	return addr, addr != ""
}

func findSSNLast4(text string) (string, bool) {
	m := reSSN.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	ssn := strings.TrimSpace(m[1])
	return ssn[len(ssn)-4:], true
}

func findDOB(text string) (string, bool) {
	m := reDOB.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
