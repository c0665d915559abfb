package dto

// ChatbotRequest represents a staff question for the assistant. Context is
// optional free text folded into the prompt, e.g. the record on screen.
type ChatbotRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
	Context string `json:"context" validate:"omitempty,max=8000"`
}

// ChatbotResponse represents the assistant reply
type ChatbotResponse struct {
	Message string `json:"message"`
	Reply   string `json:"reply"`
}
