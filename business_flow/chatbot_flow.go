package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/app/services"
)

// ChatbotFlow forwards staff questions to the completion provider
type ChatbotFlow interface {
	Ask(ctx context.Context, req *dto.ChatbotRequest, metadata *ClientMetadata) (*dto.ChatbotResponse, error)
}

// ChatbotFlowImpl implements the chatbot business flow
type ChatbotFlowImpl struct {
	completionSvc services.CompletionService
}

// NewChatbotFlow creates a new chatbot flow instance
func NewChatbotFlow(completionSvc services.CompletionService) ChatbotFlow {
	return &ChatbotFlowImpl{
		completionSvc: completionSvc,
	}
}

// Ask sends the trimmed message to the provider and returns the reply. The
// optional context is prepended to the question so the provider sees both.
func (s *ChatbotFlowImpl) Ask(ctx context.Context, req *dto.ChatbotRequest, metadata *ClientMetadata) (*dto.ChatbotResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, NewBusinessError("CHATBOT_VALIDATION_FAILED", "Message is required", nil)
	}

	prompt := message
	if extra := strings.TrimSpace(req.Context); extra != "" {
		prompt = fmt.Sprintf("Ngữ cảnh: %s\n\nCâu hỏi: %s", extra, message)
	}

	reply, err := s.completionSvc.Complete(ctx, prompt)
	if err != nil {
		return nil, NewBusinessError("CHATBOT_FAILED", "Chatbot request failed", ErrChatbotUnavailable)
	}

	return &dto.ChatbotResponse{
		Message: "Reply generated",
		Reply:   reply,
	}, nil
}
