package domain

// PublishInput triggers one publish decision
type PublishInput struct {
	JobID string `json:"job_id" validate:"required" example:"2024-05-10_06_00_00-1234567890"`
	Date  string `json:"date"   validate:"required,datetime=2006-01-02" example:"2024-05-10"`
}

// PublishOutput summarizes a successful publish
// swagger:model
type PublishOutput struct {
	JobID      string `json:"job_id"             example:"2024-05-10_06_00_00-1234567890"`
	Date       string `json:"date"               example:"2024-05-10"`
	Report     string `json:"report"             example:"daily"`
	Baseline   string `json:"baseline,omitempty" example:"2024-05-09"`
	Registrars int    `json:"registrars"         example:"3"`
	Matches    int    `json:"matches"            example:"7"`
}

// Output projects a successful result onto the response payload
func (r Result) Output() PublishOutput {
	out := PublishOutput{
		JobID:      r.JobID,
		Date:       FormatDay(r.Date),
		Report:     r.Report.String(),
		Registrars: r.Registrars,
		Matches:    r.Matches,
	}
	if !r.Baseline.IsZero() {
		out.Baseline = FormatDay(r.Baseline)
	}
	return out
}
