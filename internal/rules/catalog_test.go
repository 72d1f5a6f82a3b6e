package rules

import (
	"testing"

	"github.com/joseph-ayodele/credit-audit/constants"
)

func TestDefaultCatalogCoversTaxonomy(t *testing.T) {
	c := Default()
	if got := len(c.Types()); got != 23 {
		t.Fatalf("len(Types()) = %d, want 23", got)
	}
	for _, typ := range c.Types() {
		info, ok := c.Violation(typ)
		if !ok {
			t.Fatalf("Violation(%q) missing", typ)
		}
		if info.Name == "" || info.FCRASection == "" || info.Impact <= 0 {
			t.Errorf("incomplete metadata for %q: %+v", typ, info)
		}
		if info.Strategy == "" {
			t.Errorf("no strategy stamped for %q", typ)
		}
	}
	if _, ok := c.Violation("made_up"); ok {
		t.Error("unknown type should not resolve")
	}
}

func TestViolationMetadata(t *testing.T) {
	c := Default()
	tests := []struct {
		typ      ViolationType
		severity Severity
		section  string
		impact   int
		strategy StrategyKey
	}{
		{BalanceExceedsLimit, SeverityHigh, "623(a)(1)", 10, StrategyFactualDispute},
		{ImpossibleLatePattern, SeverityHigh, "623(a)(1)", 20, StrategyFCRAViolation},
		{MedicalCollectionNCAP, SeverityMedium, "NCAP 2022", 15, StrategyCollectionValidation},
		{IdentityTheft, SeverityCritical, "605B", 50, StrategySection605B},
		{DuplicateAccount, SeverityHigh, "623(a)(1)", 15, StrategyNotMyAccount},
		{MixedFile, SeverityHigh, "607(b)", 30, StrategyFactualDispute},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			info, _ := c.Violation(tt.typ)
			if info.Severity != tt.severity || info.FCRASection != tt.section || info.Impact != tt.impact || info.Strategy != tt.strategy {
				t.Errorf("Violation(%q) = %+v", tt.typ, info)
			}
		})
	}
}

func TestSeverityPriority(t *testing.T) {
	tests := map[Severity]int{
		SeverityCritical: 1,
		SeverityHigh:     2,
		SeverityMedium:   3,
		SeverityLow:      4,
		Severity("odd"):  3,
	}
	for sev, want := range tests {
		if got := sev.Priority(); got != want {
			t.Errorf("%q.Priority() = %d, want %d", sev, got, want)
		}
	}
}

func TestStrategyFallback(t *testing.T) {
	c := Default()
	if got := c.Strategy(StrategySection605B); got.TimelineDays != 4 || got.Intensity != "urgent" {
		t.Errorf("Strategy(section_605b) = %+v", got)
	}
	if got := c.Strategy(StrategyCollectionValidation); got.Key != StrategyFactualDispute {
		t.Errorf("unmapped key should fall back to factual dispute, got %+v", got)
	}
}

func TestLetterFor(t *testing.T) {
	tests := []struct {
		typ      ViolationType
		strategy StrategyKey
		want     LetterType
	}{
		{IdentityTheft, StrategySection605B, LetterSection605B},
		{NotMyAccount, StrategyFactualDispute, LetterSection605B},
		{PaidCollection, StrategyCollectionValidation, LetterDebtValidation},
		{MedicalCollectionNCAP, StrategyCollectionValidation, LetterDebtValidation},
		{UnauthorizedInquiry, StrategyFCRAViolation, LetterFCRAViolation},
		{ClosedWithBalance, StrategyGoodwillAdjustment, LetterGoodwill},
		{BalanceExceedsLimit, StrategyFactualDispute, LetterBureauDispute},
	}
	for _, tt := range tests {
		if got := LetterFor(tt.typ, tt.strategy); got != tt.want {
			t.Errorf("LetterFor(%q, %q) = %q, want %q", tt.typ, tt.strategy, got, tt.want)
		}
	}
}

func TestLegalBasis(t *testing.T) {
	if got := LegalBasis("623(a)(1)"); got != "FCRA § 623(a)(1)" {
		t.Errorf("LegalBasis = %q", got)
	}
	if got := LegalBasis("NCAP 2018"); got != "NCAP 2018" {
		t.Errorf("LegalBasis = %q", got)
	}
	if got := LegalBasis(""); got != "" {
		t.Errorf("LegalBasis(\"\") = %q", got)
	}
}

func TestBureauDirectoryOrder(t *testing.T) {
	got := Default().Bureaus()
	want := constants.Bureaus()
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i].Bureau != want[i] {
			t.Errorf("Bureaus()[%d] = %q, want %q", i, got[i].Bureau, want[i])
		}
	}
}
