package entity

import "github.com/joseph-ayodele/credit-audit/internal/rules"

// AccountRef is the subset of account fields carried on a violation.
type AccountRef struct {
	Creditor            string  `json:"creditor_name"`
	AccountNumberMasked string  `json:"account_number,omitempty"`
	AccountType         string  `json:"account_type,omitempty"`
	Status              string  `json:"account_status,omitempty"`
	Balance             float64 `json:"current_balance,omitempty"`
}

func RefOf(a Account) *AccountRef {
	return &AccountRef{
		Creditor:            a.Creditor,
		AccountNumberMasked: a.AccountNumberMasked,
		AccountType:         a.AccountType,
		Status:              a.Status,
		Balance:             a.Balance,
	}
}

type Violation struct {
	Type            rules.ViolationType `json:"type"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Severity        rules.Severity      `json:"severity"`
	FCRASection     string              `json:"fcra_section"`
	EstimatedImpact int                 `json:"estimated_impact"`
	Account         *AccountRef         `json:"account,omitempty"`
	DisputeStrategy rules.StrategyKey   `json:"dispute_strategy"`
	Priority        int                 `json:"priority"`
}

// Creditor returns the creditor the violation is about, or "".
func (v Violation) Creditor() string {
	if v.Account == nil {
		return ""
	}
	return v.Account.Creditor
}

type Discrepancy struct {
	Type          rules.ViolationType `json:"type"`
	AccountNumber string              `json:"account_number"`
	Field         string              `json:"field"`
	Values        []string            `json:"values"`
	Description   string              `json:"description"`
	Severity      rules.Severity      `json:"severity"`
	FCRASection   string              `json:"fcra_section"`
}

type SeveritySummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

type Recommendation struct {
	Rank            int                 `json:"rank"`
	ErrorType       rules.ViolationType `json:"error_type"`
	Creditor        string              `json:"creditor"`
	Strategy        rules.StrategyKey   `json:"strategy"`
	Priority        int                 `json:"priority"`
	EstimatedImpact int                 `json:"estimated_impact"`
	LegalBasis      string              `json:"legal_basis"`
}

type ReportStats struct {
	TotalAccounts    int     `json:"total_accounts"`
	NegativeAccounts int     `json:"negative_accounts"`
	Collections      int     `json:"collections"`
	TotalDebt        float64 `json:"total_debt"`
	HardInquiries    int     `json:"hard_inquiries"`
	PublicRecords    int     `json:"public_records"`
}

// Analysis is the full output of error detection for one report.
type Analysis struct {
	TotalViolations    int              `json:"total_errors"`
	TotalDiscrepancies int              `json:"total_discrepancies"`
	TotalImpact        int              `json:"total_estimated_impact"`
	Violations         []Violation      `json:"errors"`
	Discrepancies      []Discrepancy    `json:"discrepancies"`
	Summary            SeveritySummary  `json:"error_summary"`
	Ranking            []Violation      `json:"priority_ranking"`
	Recommendations    []Recommendation `json:"recommended_disputes"`
	Stats              ReportStats      `json:"statistics"`
}
