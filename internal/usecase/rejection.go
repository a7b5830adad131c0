package usecase

// Rejection codes returned by the impact analyzer.
const (
	RejectAccountNotFound  = "ACCOUNT_NOT_FOUND"
	RejectDirtyData        = "DIRTY_DATA"
	RejectCompanyNotFound  = "COMPANY_NOT_FOUND"
	RejectSettingsNotFound = "COMPANY_SETTINGS_NOT_FOUND"
	RejectInvalidFYConfig  = "INVALID_FY_CONFIGURATION"
	RejectNoRecalculation  = "NO_RECALCULATION_NEEDED"
)

// DirtyBranch reports the stale periods of one branch.
type DirtyBranch struct {
	BranchID    string   `json:"branchId"`
	BranchName  string   `json:"branchName"`
	DirtyMonths []string `json:"dirtyMonths"`
}

// Rejection is a structured precondition failure. It carries enough detail
// for the caller to resolve the condition and resubmit; it is never
// silently coerced into a success.
type Rejection struct {
	Code          string        `json:"code"`
	Message       string        `json:"message"`
	DirtyBranches []DirtyBranch `json:"dirtyBranches,omitempty"`
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return r.Code + ": " + r.Message
}
