package ocr

import "strings"

// corrections are common tesseract misreadings in credit report vocabulary. Order matters:
// longer forms go before their prefixes.
var corrections = []struct{ wrong, right string }{
	{"Equlfax", "Equifax"},
	{"Equlfa", "Equifax"},
	{"Experlan", "Experian"},
	{"TransUnlon", "TransUnion"},
	{"TransUnon", "TransUnion"},
	{"credlt", "credit"},
	{"sc0re", "score"},
	{"acc0unt", "account"},
	{"b4lance", "balance"},
	{"p4yment", "payment"},
	{"h1story", "history"},
	{"negatlve", "negative"},
	{"posltlve", "positive"},
	{"1nqu1ry", "inquiry"},
	{"c0llectlon", "collection"},
	{"charg3-off", "charge-off"},
	{"ch4rge-off", "charge-off"},
	{"del1nquent", "delinquent"},
	{"p4st due", "past due"},
	{"curr3nt", "current"},
	{"op3ned", "opened"},
	{"cl0sed", "closed"},
	{"1lm1t", "limit"},
	{"h1gh", "high"},
}

var correctionReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(corrections))
	for _, c := range corrections {
		pairs = append(pairs, c.wrong, c.right)
	}
	return strings.NewReplacer(pairs...)
}()

// Normalize fixes known misreadings, then trims every line and drops blank ones.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = correctionReplacer.Replace(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		if ln = strings.TrimSpace(ln); ln != "" {
			kept = append(kept, ln)
		}
	}
	return strings.Join(kept, "\n")
}
