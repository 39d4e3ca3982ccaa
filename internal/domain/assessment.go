package domain

// ValidationResult accumulates field-keyed validation errors and warnings.
// It is recomputed per call and never persisted.
type ValidationResult struct {
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

func NewValidationResult() ValidationResult {
	return ValidationResult{
		Errors:   make(map[string]string),
		Warnings: make(map[string]string),
	}
}

// Valid reports whether the item passed validation. Warnings do not count.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r ValidationResult) AddError(field, msg string) {
	r.Errors[field] = msg
}

func (r ValidationResult) AddWarning(field, msg string) {
	r.Warnings[field] = msg
}

// QualityAssessment is the heuristic 1-100 composite score with its four
// equally weighted sub-scores, each in [0,1].
type QualityAssessment struct {
	Score        int     `json:"score"`
	Completeness float64 `json:"completeness"`
	Recency      float64 `json:"recency"`
	Length       float64 `json:"length"`
	Structure    float64 `json:"structure"`
}

// AIQualityAssessment is the external-model score on a 0-10 scale.
// A zero-valued assessment with Pass=false is the degraded result when the
// external call fails.
type AIQualityAssessment struct {
	Overall         float64  `json:"overall"`
	Coherence       float64  `json:"coherence"`
	Clarity         float64  `json:"clarity"`
	Accuracy        float64  `json:"accuracy"`
	Relevance       float64  `json:"relevance"`
	Engagement      float64  `json:"engagement"`
	Recommendations []string `json:"recommendations,omitempty"`
	Pass            bool     `json:"pass"`
}
