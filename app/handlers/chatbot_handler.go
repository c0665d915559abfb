package handlers

import (
	"log"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// chatbotTimeout bounds one round trip to the completion provider
const chatbotTimeout = 60 * time.Second

// ChatbotHandlerInterface defines the contract for chatbot handlers
type ChatbotHandlerInterface interface {
	Ask(c fiber.Ctx) error
}

// ChatbotHandler handles AI assistant passthrough requests
type ChatbotHandler struct {
	chatbotFlow businessflow.ChatbotFlow
	validator   *validator.Validate
}

// NewChatbotHandler creates a new chatbot handler
func NewChatbotHandler(chatbotFlow businessflow.ChatbotFlow) *ChatbotHandler {
	return &ChatbotHandler{
		chatbotFlow: chatbotFlow,
		validator:   validator.New(),
	}
}

// Ask forwards a staff question to the configured completion provider
func (h *ChatbotHandler) Ask(c fiber.Ctx) error {
	var req dto.ChatbotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	// The upstream provider can be slow, give it more room than the default
	ctx := createRequestContextWithTimeout(c, "/api/v1/ai/chatbot", chatbotTimeout)

	result, err := h.chatbotFlow.Ask(ctx, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsChatbotUnavailable(err) {
			return errorResponse(c, fiber.StatusServiceUnavailable, "AI assistant is unavailable", "CHATBOT_UNAVAILABLE", nil)
		}

		log.Println("Chatbot request failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Chatbot request failed", "CHATBOT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Reply generated", fiber.Map{
		"message": result.Message,
		"reply":   result.Reply,
	})
}
