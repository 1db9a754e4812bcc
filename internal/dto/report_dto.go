package dto

// ReportDimension is one scored axis of the grading report.
type ReportDimension struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// GradingReportResponse is the structured grading result returned to callers.
// The four dimension keys and overall_summary are a fixed contract consumed
// by the dashboard; extra keys returned by the model are dropped.
type GradingReportResponse struct {
	TechnicalSkills     ReportDimension `json:"technical_skills"`
	CodeQuality         ReportDimension `json:"code_quality"`
	ComplexityAnalysis  ReportDimension `json:"complexity_analysis"`
	CommunicationSkills ReportDimension `json:"communication_skills"`
	OverallSummary      string          `json:"overall_summary"`
}

// GradingReportRequest identifies whose session to grade.
type GradingReportRequest struct {
	CandidateID string `json:"candidate_id"`
}
