package domain

import "time"

type AnalysisStatus string

const (
	AnalysisQueued    AnalysisStatus = "queued"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// AnalysisOutput is what the model returns for one document. It is merged
// into a DocumentAnalysis record by the caller.
type AnalysisOutput struct {
	Summary         string
	ExtractedFields map[string]string
	InputTokens     int
	OutputTokens    int
}

type DocumentAnalysis struct {
	ID              string            `json:"id"`
	DocumentID      string            `json:"document_id"`
	CaseID          string            `json:"case_id"`
	RequestedBy     string            `json:"requested_by"`
	Model           string            `json:"model"`
	Status          AnalysisStatus    `json:"status"`
	Summary         string            `json:"summary"`
	ExtractedFields map[string]string `json:"extracted_fields"`
	InputTokens     int               `json:"input_tokens"`
	OutputTokens    int               `json:"output_tokens"`
	FailureReason   string            `json:"failure_reason"`
	CreatedAt       time.Time         `json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
}
