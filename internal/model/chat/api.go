package chat

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// Answer is the raw reply of the answering service.
type Answer struct {
	Response string `json:"response"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// FeedbackResult acknowledges a feedback submission.
type FeedbackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
