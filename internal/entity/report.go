package entity

import "github.com/joseph-ayodele/credit-audit/constants"

// MaxRawTextLen caps the audit copy of extracted text kept on a report.
const MaxRawTextLen = 50000

// StructuredReport is the normalized record extracted from one document. Anything the
// source did not contain stays nil or empty.
type StructuredReport struct {
	Format           string           `json:"format"`
	Bureau           constants.Bureau `json:"bureau"`
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	Scores           map[string]int   `json:"scores"`
	Accounts         []Account        `json:"accounts"`
	Inquiries        []Inquiry        `json:"inquiries"`
	PublicRecords    []PublicRecord   `json:"public_records"`
	ExtractionMethod string           `json:"extraction_method,omitempty"`
	RawText          string           `json:"raw_text,omitempty"`
}

type PersonalInfo struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	SSNLast4    *string `json:"ssn_last_4,omitempty"`
	DateOfBirth *string `json:"dob,omitempty"`
}

// Empty reports whether no personal field was found.
func (p PersonalInfo) Empty() bool {
	return p.Name == nil && p.Address == nil && p.SSNLast4 == nil && p.DateOfBirth == nil
}

// Account is one tradeline. AccountNumber holds the unmasked number when extraction saw it;
// it never leaves the process in JSON.
type Account struct {
	Creditor            string           `json:"creditor_name"`
	AccountNumber       string           `json:"-"`
	AccountNumberMasked string           `json:"account_number"`
	AccountType         string           `json:"account_type,omitempty"`
	Status              string           `json:"account_status,omitempty"`
	PaymentStatus       string           `json:"payment_status,omitempty"`
	Bureau              constants.Bureau `json:"bureau,omitempty"`

	Balance        float64 `json:"current_balance"`
	CreditLimit    float64 `json:"credit_limit"`
	HighBalance    float64 `json:"high_balance,omitempty"`
	MonthlyPayment float64 `json:"monthly_payment,omitempty"`
	PastDueAmount  float64 `json:"past_due_amount,omitempty"`

	Late30      int `json:"late_30_count"`
	Late60      int `json:"late_60_count"`
	Late90      int `json:"late_90_count"`
	Late120Plus int `json:"late_120_plus_count"`

	IsNegative       bool `json:"is_negative"`
	IsCollection     bool `json:"is_collection"`
	IsChargeOff      bool `json:"is_charge_off"`
	IsMedical        bool `json:"is_medical"`
	IsEducational    bool `json:"is_educational"`
	IsAuthorizedUser bool `json:"is_authorized_user"`

	DateOpened       string `json:"date_opened,omitempty"`
	DateClosed       string `json:"date_closed,omitempty"`
	LastPaymentDate  string `json:"last_payment_date,omitempty"`
	LastReportedDate string `json:"last_reported_date,omitempty"`
}

// IdentityKey is the value used to match the same account across bureau records.
func (a Account) IdentityKey() string {
	if a.AccountNumber != "" {
		return a.AccountNumber
	}
	return a.AccountNumberMasked
}

const (
	InquiryHard = "hard"
	InquirySoft = "soft"
)

type Inquiry struct {
	Creditor string `json:"creditor_name"`
	Date     string `json:"inquiry_date"`
	Type     string `json:"type"`
}

const (
	RecordBankruptcy = "bankruptcy"
	RecordJudgment   = "judgment"
	RecordTaxLien    = "tax_lien"
)

type PublicRecord struct {
	Type    string `json:"type"`
	Details string `json:"details"`
	Status  string `json:"status"`
}

// Sufficient is the direct-extraction acceptance test: any personal field, any score or any account.
func (r StructuredReport) Sufficient() bool {
	return !r.PersonalInfo.Empty() || len(r.Scores) > 0 || len(r.Accounts) > 0
}
