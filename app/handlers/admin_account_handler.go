package handlers

import (
	"log"
	"strconv"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminAccountHandlerInterface defines the contract for admin account handlers
type AdminAccountHandlerInterface interface {
	ListAccounts(c fiber.Ctx) error
	GetAccount(c fiber.Ctx) error
	CreateAccount(c fiber.Ctx) error
	ApproveAccount(c fiber.Ctx) error
	UpdateAccount(c fiber.Ctx) error
	DeleteAccount(c fiber.Ctx) error
}

// AdminAccountHandler handles admin-only account management requests
type AdminAccountHandler struct {
	adminFlow businessflow.AdminAccountFlow
	validator *validator.Validate
}

// NewAdminAccountHandler creates a new admin account handler
func NewAdminAccountHandler(adminFlow businessflow.AdminAccountFlow) *AdminAccountHandler {
	return &AdminAccountHandler{
		adminFlow: adminFlow,
		validator: validator.New(),
	}
}

// ListAccounts returns staff accounts with filters and pagination
func (h *AdminAccountHandler) ListAccounts(c fiber.Ctx) error {
	var req dto.ListAccountsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.adminFlow.ListAccounts(createRequestContext(c, "/api/v1/admin/users"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidRole(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role", "INVALID_ROLE", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Account listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account listing failed", "LIST_ACCOUNTS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"accounts":  result.Accounts,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// GetAccount returns one staff account
func (h *AdminAccountHandler) GetAccount(c fiber.Ctx) error {
	accountID, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid account id", "INVALID_ID", nil)
	}

	result, err := h.adminFlow.GetAccount(createRequestContext(c, "/api/v1/admin/users/:id"), accountID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}

		log.Println("Account lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account lookup failed", "GET_ACCOUNT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account": result.Account,
	})
}

// CreateAccount provisions a staff account directly, skipping OTP verification
func (h *AdminAccountHandler) CreateAccount(c fiber.Ctx) error {
	var req dto.CreateAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.adminFlow.CreateAccount(createRequestContext(c, "/api/v1/admin/users"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUsernameAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Username is already taken", "USERNAME_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email is already registered", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsInvalidRole(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role", "INVALID_ROLE", nil)
		}

		log.Println("Account creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account creation failed", "CREATE_ACCOUNT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, result.Message, fiber.Map{
		"account": result.Account,
	})
}

// ApproveAccount grants a role and activates a pending staff account
func (h *AdminAccountHandler) ApproveAccount(c fiber.Ctx) error {
	accountID, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid account id", "INVALID_ID", nil)
	}

	var req dto.ApproveAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.adminFlow.ApproveAccount(createRequestContext(c, "/api/v1/admin/users/:id/approve"), accountID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidRole(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role", "INVALID_ROLE", nil)
		}
		if businessflow.IsAdminAccountProtected(err) {
			return errorResponse(c, fiber.StatusForbidden, "The bootstrap admin account cannot be modified", "ADMIN_ACCOUNT_PROTECTED", nil)
		}

		log.Println("Account approval failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account approval failed", "APPROVE_ACCOUNT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account": result.Account,
	})
}

// UpdateAccount grants a role and/or toggles activation on a staff account
func (h *AdminAccountHandler) UpdateAccount(c fiber.Ctx) error {
	accountID, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid account id", "INVALID_ID", nil)
	}

	var req dto.UpdateAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.adminFlow.UpdateAccount(createRequestContext(c, "/api/v1/admin/users/:id"), accountID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidRole(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role", "INVALID_ROLE", nil)
		}
		if businessflow.IsAdminAccountProtected(err) {
			return errorResponse(c, fiber.StatusForbidden, "The bootstrap admin account cannot be modified", "ADMIN_ACCOUNT_PROTECTED", nil)
		}

		log.Println("Account update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account update failed", "UPDATE_ACCOUNT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account": result.Account,
	})
}

// DeleteAccount removes a staff account
func (h *AdminAccountHandler) DeleteAccount(c fiber.Ctx) error {
	accountID, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid account id", "INVALID_ID", nil)
	}

	result, err := h.adminFlow.DeleteAccount(createRequestContext(c, "/api/v1/admin/users/:id"), accountID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAdminAccountProtected(err) {
			return errorResponse(c, fiber.StatusForbidden, "The bootstrap admin account cannot be deleted", "ADMIN_ACCOUNT_PROTECTED", nil)
		}

		log.Println("Account deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Account deletion failed", "DELETE_ACCOUNT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, nil)
}

// parseIDParam parses the :id path parameter
func parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
