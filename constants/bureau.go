package constants

import (
	"strings"
)

type Bureau string

const (
	Equifax       Bureau = "equifax"
	Experian      Bureau = "experian"
	TransUnion    Bureau = "transunion"
	UnknownBureau Bureau = "unknown"
)

// allBureaus is also the order bureaus are scheduled in a dispute round.
var allBureaus = []Bureau{
	Equifax,
	Experian,
	TransUnion,
}

func Bureaus() []Bureau {
	out := make([]Bureau, len(allBureaus))
	copy(out, allBureaus)
	return out
}

func BureausAsStrings() []string {
	result := make([]string, len(allBureaus))
	for i, b := range allBureaus {
		result[i] = string(b)
	}
	return result
}

// CanonicalizeBureau maps free-form bureau names ("Trans Union", "EQUIFAX INFORMATION SERVICES")
// to a Bureau. Returns UnknownBureau, false when nothing matches.
func CanonicalizeBureau(input string) (Bureau, bool) {
	if input == "" {
		return UnknownBureau, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Bureau{
		"eq":          Equifax,
		"efx":         Equifax,
		"ex":          Experian,
		"exp":         Experian,
		"tu":          TransUnion,
		"trans union": TransUnion,
	}
	if b, ok := synonyms[normalized]; ok {
		return b, true
	}

	compact := strings.ReplaceAll(normalized, " ", "")
	for _, b := range allBureaus {
		if strings.HasPrefix(compact, string(b)) {
			return b, true
		}
	}
	return UnknownBureau, false
}
