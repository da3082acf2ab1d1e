package dto

type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatSource struct {
	EntityType string  `json:"entityType"`
	EntityID   string  `json:"entityId"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Citation   string  `json:"citation"`
}

type ChatMetadata struct {
	ProcessingTime      float64  `json:"processingTime"`
	StepsExecuted       []string `json:"stepsExecuted"`
	RetrievedDocuments  int      `json:"retrievedDocuments"`
	QueryClassification string   `json:"queryClassification"`
	FromCache           bool     `json:"fromCache,omitempty"`
	FunctionCalls       []any    `json:"functionCalls,omitempty"`
}

type ChatResponse struct {
	Answer     string       `json:"answer"`
	Sources    []ChatSource `json:"sources"`
	Confidence float64      `json:"confidence"`
	SessionID  string       `json:"sessionId"`
	Metadata   ChatMetadata `json:"metadata"`
}
