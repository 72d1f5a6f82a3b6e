package rules

type StrategyKey string

const (
	StrategyFactualDispute       StrategyKey = "factual_dispute"
	StrategySection609           StrategyKey = "section_609"
	StrategySection605B          StrategyKey = "section_605b"
	StrategyDebtValidation       StrategyKey = "debt_validation"
	StrategyGoodwillAdjustment   StrategyKey = "goodwill_adjustment"
	StrategyFCRAViolation        StrategyKey = "fcra_violation"
	StrategyMethodOfVerification StrategyKey = "method_of_verification"
	StrategyNotMyAccount         StrategyKey = "not_my_account"
	StrategyCollectionValidation StrategyKey = "collection_validation"
)

var strategyTable = []StrategyDetail{
	{StrategyFactualDispute, "Factual Dispute", "Direct dispute of factual inaccuracies", 30, 0.65, "standard"},
	{StrategySection609, "Section 609 Verification", "Request verification under FCRA § 609", 30, 0.75, "standard"},
	{StrategySection605B, "Section 605B Identity Theft Block", "Block fraudulent accounts under FCRA § 605B", 4, 0.90, "urgent"},
	{StrategyDebtValidation, "Debt Validation Request", "Request validation under FDCPA § 809", 30, 0.70, "firm"},
	{StrategyGoodwillAdjustment, "Goodwill Adjustment", "Request goodwill deletion", 14, 0.40, "polite"},
	{StrategyFCRAViolation, "FCRA Violation Challenge", "Challenge based on FCRA violations", 30, 0.80, "aggressive"},
	{StrategyMethodOfVerification, "Method of Verification Request", "Request verification method under FCRA § 611(a)(7)", 15, 0.60, "firm"},
}

// strategyFor is the dispute approach recorded on a violation. not_my_account and collection_validation
// have no detail record of their own and resolve to the factual dispute in Catalog.Strategy.
func strategyFor(t ViolationType) StrategyKey {
	switch t {
	case OutdatedNegative, OutdatedInquiry, ImpossibleLatePattern, UnauthorizedInquiry:
		return StrategyFCRAViolation
	case DuplicateAccount:
		return StrategyNotMyAccount
	case PaidCollection, MedicalCollectionNCAP:
		return StrategyCollectionValidation
	case IdentityTheft:
		return StrategySection605B
	default:
		return StrategyFactualDispute
	}
}

type LetterType string

const (
	LetterSection605B    LetterType = "section_605b"
	LetterDebtValidation LetterType = "debt_validation"
	LetterFCRAViolation  LetterType = "fcra_violation"
	LetterGoodwill       LetterType = "goodwill"
	LetterBureauDispute  LetterType = "bureau_dispute"
)

// LetterFor picks the letter template a scheduled item needs.
func LetterFor(t ViolationType, strategy StrategyKey) LetterType {
	switch t {
	case IdentityTheft, NotMyAccount:
		return LetterSection605B
	case PaidCollection, MedicalCollectionNCAP:
		return LetterDebtValidation
	case UnauthorizedInquiry:
		return LetterFCRAViolation
	}
	if strategy == StrategyGoodwillAdjustment {
		return LetterGoodwill
	}
	return LetterBureauDispute
}
