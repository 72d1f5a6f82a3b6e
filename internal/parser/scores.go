package parser

import (
	"regexp"
	"strconv"

	"github.com/joseph-ayodele/credit-audit/constants"
)

const (
	minScore = 300
	maxScore = 850
)

var genericScorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)score[:\s]*(\d{3})\b`),
	regexp.MustCompile(`(?i)\b(\d{3})\s*(?:credit\s*)?score`),
	regexp.MustCompile(`(?i)fico\s*score[:\s]*(\d{3})\b`),
	regexp.MustCompile(`(?i)vantage\s*score[:\s]*(\d{3})\b`),
}

var bureauScorePatterns = func() map[constants.Bureau]*regexp.Regexp {
	m := make(map[constants.Bureau]*regexp.Regexp)
	for _, b := range constants.Bureaus() {
		m[b] = regexp.MustCompile(`(?is)` + string(b) + `.*?score[:\s]*(\d{3})\b`)
	}
	return m
}()

// ExtractScores returns bureau → score. Aggregator and unknown-bureau reports are searched for all
// three bureaus; a single-bureau report only for its own. Generic patterns are consulted only when
// no bureau-qualified score was found, and are credited to the detected bureau.
func ExtractScores(text string, bureau constants.Bureau, format string) map[string]int {
	scores := map[string]int{}

	scope := []constants.Bureau{bureau}
	if bureau == constants.UnknownBureau || (format != FormatUnknown && format != FormatOCR && format != FormatImageOCR) {
		scope = constants.Bureaus()
	}
	for _, b := range scope {
		if re, ok := bureauScorePatterns[b]; ok {
			if s, ok := firstScore(re, text); ok {
				scores[string(b)] = s
			}
		}
	}
	if len(scores) > 0 {
		return scores
	}

	for _, re := range genericScorePatterns {
		if s, ok := firstScore(re, text); ok {
			scores[string(bureau)] = s
			break
		}
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

// firstScore returns the first match of re inside the valid score range. Out-of-range matches
// are skipped, never clamped.
func firstScore(re *regexp.Regexp, text string) (int, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= minScore && n <= maxScore {
			return n, true
		}
	}
	return 0, false
}
