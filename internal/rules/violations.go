package rules

type ViolationType string

const (
	OutdatedNegative       ViolationType = "outdated_negative"
	OutdatedInquiry        ViolationType = "outdated_inquiry"
	OutdatedBankruptcy     ViolationType = "outdated_bankruptcy"
	BalanceExceedsLimit    ViolationType = "balance_exceeds_limit"
	MissingCreditLimit     ViolationType = "missing_credit_limit"
	DuplicateAccount       ViolationType = "duplicate_account"
	ImpossibleLatePattern  ViolationType = "impossible_late_pattern"
	ContradictoryStatus    ViolationType = "contradictory_status"
	PaidCollection         ViolationType = "paid_collection"
	MedicalCollectionNCAP  ViolationType = "medical_collection_ncap"
	TaxLienNCAP            ViolationType = "tax_lien_ncap"
	ChargeOffBalanceGrowth ViolationType = "charge_off_balance_growth"
	ClosedWithBalance      ViolationType = "closed_with_balance"
	FutureDate             ViolationType = "future_date"
	MissingDate            ViolationType = "missing_date"
	ReAging                ViolationType = "re_aging"
	AuthorizedUserNegative ViolationType = "authorized_user_negative"
	SettledWithBalance     ViolationType = "settled_with_balance"
	UnauthorizedInquiry    ViolationType = "unauthorized_inquiry"
	CrossBureauDiscrepancy ViolationType = "cross_bureau_discrepancy"
	NotMyAccount           ViolationType = "not_my_account"
	IdentityTheft          ViolationType = "identity_theft"
	MixedFile              ViolationType = "mixed_file"
)

var violationTable = []ViolationInfo{
	{OutdatedNegative, "Outdated Negative (7+ Years)", "Negative items older than 7 years", SeverityHigh, "605(a)(1)", 15, ""},
	{OutdatedInquiry, "Outdated Hard Inquiry (2+ Years)", "Hard inquiries older than 2 years", SeverityMedium, "605(a)(3)", 5, ""},
	{OutdatedBankruptcy, "Outdated Bankruptcy (10+ Years)", "Bankruptcy older than 10 years", SeverityHigh, "605(a)(1)", 50, ""},
	{BalanceExceedsLimit, "Balance Exceeds Credit Limit", "Current balance exceeds stated credit limit", SeverityHigh, "623(a)(1)", 10, ""},
	{MissingCreditLimit, "Missing Credit Limit", "Account lacks credit limit information", SeverityMedium, "609(a)(1)", 5, ""},
	{DuplicateAccount, "Duplicate Account", "Same account reported multiple times", SeverityHigh, "623(a)(1)", 15, ""},
	{ImpossibleLatePattern, "Impossible Late Payment Pattern", "90+ day late without 30/60 day lates", SeverityHigh, "623(a)(1)", 20, ""},
	{ContradictoryStatus, "Contradictory Account Status", "Account status contradicts other data", SeverityHigh, "623(a)(1)", 15, ""},
	{PaidCollection, "Paid Collection Still Reporting", "Collection account still shows balance after payment", SeverityMedium, "623(a)(1)", 10, ""},
	{MedicalCollectionNCAP, "Medical Collection (NCAP Eligible)", "Paid medical collection eligible for removal", SeverityMedium, "NCAP 2022", 15, ""},
	{TaxLienNCAP, "Tax Lien (NCAP Eligible - 2018+)", "Tax lien eligible for removal under NCAP", SeverityHigh, "NCAP 2018", 30, ""},
	{ChargeOffBalanceGrowth, "Charge-Off Balance Increasing", "Balance increasing after charge-off", SeverityHigh, "623(a)(1)", 15, ""},
	{ClosedWithBalance, "Closed Account with Balance", "Closed account showing non-zero balance", SeverityHigh, "623(a)(1)", 15, ""},
	{FutureDate, "Future Date Listed", "Date in the future", SeverityHigh, "623(a)(1)", 10, ""},
	{MissingDate, "Missing Critical Date", "Required date information missing", SeverityMedium, "609(a)(1)", 5, ""},
	{ReAging, "Account Re-Aging", "Date of first delinquency changed illegally", SeverityHigh, "623(a)(5)", 25, ""},
	{AuthorizedUserNegative, "Authorized User Account Negative", "Negative authorized user account", SeverityMedium, "605(a)(1)", 10, ""},
	{SettledWithBalance, "Settled Account with Balance", "Settled account showing remaining balance", SeverityHigh, "623(a)(1)", 15, ""},
	{UnauthorizedInquiry, "Unauthorized Hard Inquiry", "Hard inquiry without permissible purpose", SeverityMedium, "604(a)(3)", 5, ""},
	{CrossBureauDiscrepancy, "Cross-Bureau Discrepancy", "Same account shows different data across bureaus", SeverityHigh, "623(a)(1)", 15, ""},
	{NotMyAccount, "Account Not Mine", "Account does not belong to consumer", SeverityHigh, "605B", 20, ""},
	{IdentityTheft, "Identity Theft / Fraud", "Fraudulent account opened without authorization", SeverityCritical, "605B", 50, ""},
	{MixedFile, "Mixed Credit File", "Another person's data on your report", SeverityHigh, "607(b)", 30, ""},
}
