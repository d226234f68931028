package models

// GJSON paths for extracting values from generateContent responses.
const (
	PathCandidateText  = "candidates.0.content.parts.0.text"
	PathFinishReason   = "candidates.0.finishReason"
	PathBlockReason    = "promptFeedback.blockReason"
	PathModelVersion   = "modelVersion"
	PathErrorCode      = "error.code"
	PathErrorMessage   = "error.message"
	PathErrorStatus    = "error.status"
	PathErrorReason    = "error.details.0.reason"
	PathUsageTotal     = "usageMetadata.totalTokenCount"
	PathUsagePrompt    = "usageMetadata.promptTokenCount"
	PathUsageCandidate = "usageMetadata.candidatesTokenCount"
)

// Part is one piece of request content
type Part struct {
	Text string `json:"text"`
}

// Content groups parts sent to the model
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the request body for generateContent
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// NewGenerateRequest builds a single-turn request carrying only the prompt
func NewGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}
}

// ModelOutput is the text extracted from a successful response
type ModelOutput struct {
	Model        string
	Text         string
	FinishReason string
	TotalTokens  int64
}
