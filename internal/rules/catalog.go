// Package rules holds the read-only lookup tables shared by detection and strategy building:
// the violation taxonomy, dispute strategies, letter types and the bureau mailing directory.
// Build one Catalog at startup and pass it by pointer; nothing here mutates after Default returns.
package rules

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Priority maps severity to 1 (highest) through 4. Unknown severities rank as medium.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 4
	default:
		return 3
	}
}

// ViolationInfo is the fixed metadata stamped onto every detected violation of a type.
type ViolationInfo struct {
	Type        ViolationType
	Name        string
	Description string
	Severity    Severity
	FCRASection string
	Impact      int
	Strategy    StrategyKey
}

// StrategyDetail describes one dispute approach.
type StrategyDetail struct {
	Key          StrategyKey `json:"key"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TimelineDays int         `json:"timeline_days"`
	SuccessRate  float64     `json:"success_rate"`
	Intensity    string      `json:"intensity"`
}

// BureauContact is a bureau's dispute mailing address.
type BureauContact struct {
	Bureau  constants.Bureau `json:"bureau"`
	Name    string           `json:"name"`
	Address string           `json:"address"`
	Phone   string           `json:"phone"`
}

type Catalog struct {
	violations map[ViolationType]ViolationInfo
	strategies map[StrategyKey]StrategyDetail
	bureaus    []BureauContact
}

// Default builds the catalog with the standard taxonomy.
func Default() *Catalog {
	c := &Catalog{
		violations: make(map[ViolationType]ViolationInfo, len(violationTable)),
		strategies: make(map[StrategyKey]StrategyDetail, len(strategyTable)),
		bureaus:    append([]BureauContact(nil), bureauDirectory...),
	}
	for _, v := range violationTable {
		v.Strategy = strategyFor(v.Type)
		c.violations[v.Type] = v
	}
	for _, s := range strategyTable {
		c.strategies[s.Key] = s
	}
	return c
}

// Violation returns the metadata for t. The second result is false for types outside the taxonomy.
func (c *Catalog) Violation(t ViolationType) (ViolationInfo, bool) {
	v, ok := c.violations[t]
	return v, ok
}

// Types lists every known violation type in sorted order.
func (c *Catalog) Types() []ViolationType {
	out := make([]ViolationType, 0, len(c.violations))
	for t := range c.violations {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strategy returns the detail record for key, falling back to the factual dispute.
func (c *Catalog) Strategy(key StrategyKey) StrategyDetail {
	if s, ok := c.strategies[key]; ok {
		return s
	}
	return c.strategies[StrategyFactualDispute]
}

// Bureaus returns the mailing directory in scheduling order.
func (c *Catalog) Bureaus() []BureauContact {
	return append([]BureauContact(nil), c.bureaus...)
}

// LegalBasis renders a citation for letters and recommendations, e.g. "FCRA § 623(a)(1)".
// Non-statutory sections such as "NCAP 2022" are returned unchanged.
func LegalBasis(section string) string {
	section = strings.TrimSpace(section)
	if section == "" {
		return ""
	}
	if section[0] >= '0' && section[0] <= '9' {
		return "FCRA § " + section
	}
	return section
}
