package harness

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Valid, Codes and Warnings report query.Validate.
	Valid    bool     `json:"valid"`
	Codes    []string `json:"codes"`
	Warnings []string `json:"warnings,omitempty"`

	// IDs holds the "id" of every matched record in record order. Count is
	// the number of matches. Both stay empty for invalid trees.
	IDs   []any `json:"ids"`
	Count int   `json:"count"`

	// SQLIDs holds the ids SQLite selected, when the scenario asked for
	// the SQL check.
	SQLIDs []any `json:"sql_ids,omitempty"`

	SQL         string `json:"sql"`
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Codes:  []string{},
		IDs:    []any{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
