package handlers

import (
	"log"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReportHandlerInterface defines the contract for reporting handlers
type ReportHandlerInterface interface {
	Dashboard(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ReportHandler handles financial dashboard and export requests
type ReportHandler struct {
	reportFlow businessflow.ReportFlow
	validator  *validator.Validate
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportFlow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{
		reportFlow: reportFlow,
		validator:  validator.New(),
	}
}

// Dashboard returns the aggregated financial dashboard
func (h *ReportHandler) Dashboard(c fiber.Ctx) error {
	var req dto.DashboardRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.reportFlow.Dashboard(createRequestContext(c, "/api/v1/financial/dashboard"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Start date must not be after end date", "INVALID_DATE_RANGE", nil)
		}

		log.Println("Dashboard aggregation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dashboard aggregation failed", "DASHBOARD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Export streams the financial report as an Excel attachment or JSON payload
func (h *ReportHandler) Export(c fiber.Ctx) error {
	var req dto.ExportRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.reportFlow.Export(createRequestContext(c, "/api/v1/financial/export"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUnsupportedExportFormat(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unsupported export format", "UNSUPPORTED_EXPORT_FORMAT", nil)
		}
		if businessflow.IsStartDateAfterEndDate(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Start date must not be after end date", "INVALID_DATE_RANGE", nil)
		}

		log.Println("Export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Export failed", "EXPORT_FAILED", nil)
	}

	if result.Format == "json" {
		return successResponse(c, fiber.StatusOK, "Report exported", result.JSON)
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.FileName+`"`)
	return c.Status(fiber.StatusOK).Send(result.Content)
}
