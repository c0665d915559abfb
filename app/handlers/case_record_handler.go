package handlers

import (
	"context"
	"log"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CaseRecordHandlerInterface defines the contract for case record handlers
type CaseRecordHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	ListPendingIntake(c fiber.Ctx) error
	Handover(c fiber.Ctx) error
	Receive(c fiber.Ctx) error
	RejectIntake(c fiber.Ctx) error
	ReturnToBranch(c fiber.Ctx) error
	ConfirmDocumentReceipt(c fiber.Ctx) error
	RejectDocumentReceipt(c fiber.Ctx) error
}

// CaseRecordHandler handles case record lifecycle and workflow requests
type CaseRecordHandler struct {
	caseFlow  businessflow.CaseFlow
	validator *validator.Validate
}

// NewCaseRecordHandler creates a new case record handler
func NewCaseRecordHandler(caseFlow businessflow.CaseFlow) *CaseRecordHandler {
	return &CaseRecordHandler{
		caseFlow:  caseFlow,
		validator: validator.New(),
	}
}

// Create opens a new case record
func (h *CaseRecordHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCaseRecordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.caseFlow.CreateCaseRecord(createRequestContext(c, "/api/v1/case-records"), &req, actor, clientMetadata(c))
	if err != nil {
		log.Println("Case record creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Case record creation failed", "CREATE_CASE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, result.Message, fiber.Map{
		"record": result.Record,
	})
}

// Get fetches one case record
func (h *CaseRecordHandler) Get(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid record id", "INVALID_ID", nil)
	}

	result, err := h.caseFlow.GetCaseRecord(createRequestContext(c, "/api/v1/case-records/:id"), id, clientMetadata(c))
	if err != nil {
		if businessflow.IsCaseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Case record not found", "CASE_NOT_FOUND", nil)
		}

		log.Println("Case record lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Case record lookup failed", "GET_CASE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"record": result.Record,
	})
}

// List returns case records with filters and pagination
func (h *CaseRecordHandler) List(c fiber.Ctx) error {
	var req dto.ListCaseRecordsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.caseFlow.ListCaseRecords(createRequestContext(c, "/api/v1/case-records"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}
		if businessflow.IsStartDateAfterEndDate(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Start date must not be after end date", "INVALID_DATE_RANGE", nil)
		}

		log.Println("Case listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Case listing failed", "LIST_CASES_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"records":   result.Records,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// Update edits descriptive fields of a record
func (h *CaseRecordHandler) Update(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid record id", "INVALID_ID", nil)
	}

	var req dto.UpdateCaseRecordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.caseFlow.UpdateCaseRecord(createRequestContext(c, "/api/v1/case-records/:id"), id, &req, actor, clientMetadata(c))
	if err != nil {
		if businessflow.IsCaseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Case record not found", "CASE_NOT_FOUND", nil)
		}

		log.Println("Case record update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Case record update failed", "UPDATE_CASE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"record": result.Record,
	})
}

// Delete removes a case record
func (h *CaseRecordHandler) Delete(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid record id", "INVALID_ID", nil)
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.caseFlow.DeleteCaseRecord(createRequestContext(c, "/api/v1/case-records/:id"), id, actor, clientMetadata(c))
	if err != nil {
		if businessflow.IsCaseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Case record not found", "CASE_NOT_FOUND", nil)
		}

		log.Println("Case record deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Case record deletion failed", "DELETE_CASE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, nil)
}

// ListPendingIntake returns the credit-admin inbox of handed-over records
func (h *CaseRecordHandler) ListPendingIntake(c fiber.Ctx) error {
	page := fiber.Query(c, "page", 0)
	pageSize := fiber.Query(c, "page_size", 0)

	result, err := h.caseFlow.ListPendingIntake(createRequestContext(c, "/api/v1/case-records/pending-intake"), page, pageSize, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Pending intake listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Pending intake listing failed", "LIST_PENDING_INTAKE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"records":   result.Records,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// Handover marks a record as handed over to credit admin
func (h *CaseRecordHandler) Handover(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/handover", h.caseFlow.Handover)
}

// Receive confirms credit-admin intake
func (h *CaseRecordHandler) Receive(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/receive", h.caseFlow.Receive)
}

// RejectIntake declines a handed-over record
func (h *CaseRecordHandler) RejectIntake(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/reject-receipt", h.caseFlow.RejectIntake)
}

// ReturnToBranch sends documents back toward the account manager
func (h *CaseRecordHandler) ReturnToBranch(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/return", h.caseFlow.ReturnToBranch)
}

// ConfirmDocumentReceipt completes the workflow
func (h *CaseRecordHandler) ConfirmDocumentReceipt(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/confirm-documents", h.caseFlow.ConfirmDocumentReceipt)
}

// RejectDocumentReceipt records a refused document return
func (h *CaseRecordHandler) RejectDocumentReceipt(c fiber.Ctx) error {
	return h.transition(c, "/api/v1/case-records/:id/reject-documents", h.caseFlow.RejectDocumentReceipt)
}

type transitionFunc func(ctx context.Context, id uint, req *dto.TransitionRequest, actor *businessflow.Actor, metadata *businessflow.ClientMetadata) (*dto.CaseRecordResponse, error)

// transition runs the shared request plumbing for all workflow endpoints
func (h *CaseRecordHandler) transition(c fiber.Ctx, endpoint string, fn transitionFunc) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid record id", "INVALID_ID", nil)
	}

	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := fn(createRequestContext(c, endpoint), id, &req, actor, clientMetadata(c))
	if err != nil {
		if businessflow.IsCaseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Case record not found", "CASE_NOT_FOUND", nil)
		}
		if businessflow.IsTransitionConflict(err) {
			return errorResponse(c, fiber.StatusConflict, "Another update won the race, retry", "TRANSITION_CONFLICT", err.Error())
		}
		if businessflow.IsInvalidTransition(err) {
			return errorResponse(c, fiber.StatusConflict, "Transition not allowed from the current status", "TRANSITION_NOT_ALLOWED", err.Error())
		}

		log.Println("Transition failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Transition failed", "TRANSITION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"record": result.Record,
	})
}
