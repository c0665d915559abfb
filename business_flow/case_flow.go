package businessflow

import (
	"context"
	"log"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CaseFlow handles the case record lifecycle and the handoff state machine
type CaseFlow interface {
	CreateCaseRecord(ctx context.Context, req *dto.CreateCaseRecordRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	GetCaseRecord(ctx context.Context, id uint, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	ListCaseRecords(ctx context.Context, req *dto.ListCaseRecordsRequest, metadata *ClientMetadata) (*dto.ListCaseRecordsResponse, error)
	UpdateCaseRecord(ctx context.Context, id uint, req *dto.UpdateCaseRecordRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	DeleteCaseRecord(ctx context.Context, id uint, actor *Actor, metadata *ClientMetadata) (*dto.DeleteCaseRecordResponse, error)
	ListPendingIntake(ctx context.Context, page, pageSize int, metadata *ClientMetadata) (*dto.ListCaseRecordsResponse, error)

	// Workflow transitions
	Handover(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	Receive(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	RejectIntake(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	ReturnToBranch(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	ConfirmDocumentReceipt(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
	RejectDocumentReceipt(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error)
}

// CaseFlowImpl implements the case record business flow
type CaseFlowImpl struct {
	caseRepo    repository.CaseRecordRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
	db          *gorm.DB
}

// NewCaseFlow creates a new case flow instance
func NewCaseFlow(
	caseRepo repository.CaseRecordRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) CaseFlow {
	return &CaseFlowImpl{
		caseRepo:    caseRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
		db:          db,
	}
}

// CreateCaseRecord opens a new record in the new status
func (s *CaseFlowImpl) CreateCaseRecord(ctx context.Context, req *dto.CreateCaseRecordRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	record := &models.CaseRecord{
		AccountNumber:    req.AccountNumber,
		CIF:              req.CIF,
		CustomerName:     req.CustomerName,
		DisbursedAmount:  req.DisbursedAmount,
		Currency:         req.Currency,
		DisbursementDate: req.DisbursementDate,
		Status:           models.CaseStatusNew,
		Department:       req.Department,
		AccountManager:   req.AccountManager,
		ContractNo:       req.ContractNo,
		Note:             req.Note,
		CreatedAt:        utils.UTCNow(),
		UpdatedAt:        utils.UTCNow(),
	}

	if err := s.caseRepo.Save(ctx, record); err != nil {
		return nil, NewBusinessError("CREATE_CASE_FAILED", "Case record creation failed", err)
	}

	s.invalidateDashboardCache(ctx)

	return &dto.CaseRecordResponse{
		Message: "Case record created",
		Record:  ToCaseRecordDTO(*record),
	}, nil
}

// GetCaseRecord fetches a single record
func (s *CaseFlowImpl) GetCaseRecord(ctx context.Context, id uint, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	record, err := s.caseRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("GET_CASE_FAILED", "Case record lookup failed", err)
	}
	if record == nil {
		return nil, NewBusinessError("GET_CASE_FAILED", "Case record lookup failed", ErrCaseNotFound)
	}

	return &dto.CaseRecordResponse{
		Message: "Case record retrieved",
		Record:  ToCaseRecordDTO(*record),
	}, nil
}

// ListCaseRecords lists records with filters and pagination
func (s *CaseFlowImpl) ListCaseRecords(ctx context.Context, req *dto.ListCaseRecordsRequest, metadata *ClientMetadata) (*dto.ListCaseRecordsResponse, error) {
	requestedSize := req.PageSize
	if requestedSize == 0 {
		requestedSize = req.Limit
	}
	page, pageSize, err := normalizePagination(req.Page, requestedSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_CASES_VALIDATION_FAILED", "Case listing validation failed", err)
	}

	from, to, err := parseReportWindow(req.FromDate, req.ToDate)
	if err != nil {
		return nil, NewBusinessError("LIST_CASES_VALIDATION_FAILED", "Case listing validation failed", err)
	}

	filter := models.CaseRecordFilter{
		Search:          req.Search,
		AccountNumber:   req.AccountNumber,
		CustomerName:    req.CustomerName,
		AccountManager:  req.AccountManager,
		Department:      req.Department,
		Currency:        req.Currency,
		DisbursedAfter:  from,
		DisbursedBefore: to,
	}
	if req.Status != nil {
		status := models.CaseStatus(*req.Status)
		filter.Status = &status
	}

	total, err := s.caseRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CASES_FAILED", "Case listing failed", err)
	}

	rows, err := s.caseRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_CASES_FAILED", "Case listing failed", err)
	}

	records := make([]dto.CaseRecordDTO, 0, len(rows))
	for _, row := range rows {
		records = append(records, ToCaseRecordDTO(*row))
	}

	return &dto.ListCaseRecordsResponse{
		Message:  "Case records retrieved",
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateCaseRecord edits descriptive fields. Workflow flags never change here.
func (s *CaseFlowImpl) UpdateCaseRecord(ctx context.Context, id uint, req *dto.UpdateCaseRecordRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	var record *models.CaseRecord

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		record, err = s.caseRepo.ByID(txCtx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrCaseNotFound
		}

		if req.AccountNumber != nil {
			record.AccountNumber = *req.AccountNumber
		}
		if req.CIF != nil {
			record.CIF = *req.CIF
		}
		if req.CustomerName != nil {
			record.CustomerName = *req.CustomerName
		}
		if req.DisbursedAmount != nil {
			record.DisbursedAmount = *req.DisbursedAmount
		}
		if req.Currency != nil {
			record.Currency = *req.Currency
		}
		if req.DisbursementDate != nil {
			record.DisbursementDate = req.DisbursementDate
		}
		if req.Department != nil {
			record.Department = *req.Department
		}
		if req.AccountManager != nil {
			record.AccountManager = *req.AccountManager
		}
		if req.ContractNo != nil {
			record.ContractNo = *req.ContractNo
		}
		if req.Note != nil {
			record.Note = *req.Note
		}
		record.UpdatedAt = utils.UTCNow()

		return s.caseRepo.Update(txCtx, record)
	})
	if err != nil {
		return nil, NewBusinessError("UPDATE_CASE_FAILED", "Case record update failed", err)
	}

	s.invalidateDashboardCache(ctx)

	return &dto.CaseRecordResponse{
		Message: "Case record updated",
		Record:  ToCaseRecordDTO(*record),
	}, nil
}

// DeleteCaseRecord removes a record
func (s *CaseFlowImpl) DeleteCaseRecord(ctx context.Context, id uint, actor *Actor, metadata *ClientMetadata) (*dto.DeleteCaseRecordResponse, error) {
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		record, err := s.caseRepo.ByID(txCtx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrCaseNotFound
		}
		return s.caseRepo.Delete(txCtx, id)
	})
	if err != nil {
		return nil, NewBusinessError("DELETE_CASE_FAILED", "Case record deletion failed", err)
	}

	s.invalidateDashboardCache(ctx)

	return &dto.DeleteCaseRecordResponse{
		Message: "Case record deleted",
	}, nil
}

// ListPendingIntake lists the credit-admin inbox: handed over, not yet received
func (s *CaseFlowImpl) ListPendingIntake(ctx context.Context, page, pageSize int, metadata *ClientMetadata) (*dto.ListCaseRecordsResponse, error) {
	page, pageSize, err := normalizePagination(page, pageSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_PENDING_INTAKE_VALIDATION_FAILED", "Pending intake validation failed", err)
	}

	total, err := s.caseRepo.CountPendingCreditAdminIntake(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_PENDING_INTAKE_FAILED", "Pending intake listing failed", err)
	}

	rows, err := s.caseRepo.ListPendingCreditAdminIntake(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_PENDING_INTAKE_FAILED", "Pending intake listing failed", err)
	}

	records := make([]dto.CaseRecordDTO, 0, len(rows))
	for _, row := range rows {
		records = append(records, ToCaseRecordDTO(*row))
	}

	return &dto.ListCaseRecordsResponse{
		Message:  "Pending intake records retrieved",
		Records:  records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Handover marks the record as handed over to credit admin. A record rejected
// by credit admin can be handed over again; the previous intake step resets.
func (s *CaseFlowImpl) Handover(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "HANDOVER",
		[]models.CaseStatus{models.CaseStatusNew, models.CaseStatusCreditAdminRejected},
		map[string]any{
			"handover_completed": true,
			"handover_actor":     actor.Username,
			"handover_note":      req.Note,
			"receipt_completed":  false,
			"receipt_actor":      "",
			"receipt_note":       "",
			"status":             models.CaseStatusInProgress,
			"updated_at":         utils.UTCNow(),
		})
}

// Receive confirms credit-admin intake of a handed-over record
func (s *CaseFlowImpl) Receive(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "RECEIVE",
		[]models.CaseStatus{models.CaseStatusInProgress},
		map[string]any{
			"receipt_completed": true,
			"receipt_actor":     actor.Username,
			"receipt_note":      req.Note,
			"status":            models.CaseStatusCreditAdminReceived,
			"updated_at":        utils.UTCNow(),
		})
}

// RejectIntake declines a handed-over record and sends it back to the branch
func (s *CaseFlowImpl) RejectIntake(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "REJECT_INTAKE",
		[]models.CaseStatus{models.CaseStatusInProgress},
		map[string]any{
			"receipt_completed": false,
			"receipt_actor":     actor.Username,
			"receipt_note":      req.Note,
			"status":            models.CaseStatusCreditAdminRejected,
			"updated_at":        utils.UTCNow(),
		})
}

// ReturnToBranch sends the processed documents back toward the account manager
func (s *CaseFlowImpl) ReturnToBranch(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "RETURN",
		[]models.CaseStatus{models.CaseStatusCreditAdminReceived},
		map[string]any{
			"return_completed": true,
			"return_actor":     actor.Username,
			"return_note":      req.Note,
			"status":           models.CaseStatusCreditAdminReturned,
			"updated_at":       utils.UTCNow(),
		})
}

// ConfirmDocumentReceipt closes the workflow once the account manager has the documents
func (s *CaseFlowImpl) ConfirmDocumentReceipt(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "CONFIRM_DOCUMENT_RECEIPT",
		[]models.CaseStatus{models.CaseStatusCreditAdminReturned},
		map[string]any{
			"document_receipt_completed": true,
			"document_receipt_actor":     actor.Username,
			"document_receipt_note":      req.Note,
			"status":                     models.CaseStatusComplete,
			"updated_at":                 utils.UTCNow(),
		})
}

// RejectDocumentReceipt records the account manager refusing the returned documents
func (s *CaseFlowImpl) RejectDocumentReceipt(ctx context.Context, id uint, req *dto.TransitionRequest, actor *Actor, metadata *ClientMetadata) (*dto.CaseRecordResponse, error) {
	return s.transition(ctx, id, "REJECT_DOCUMENT_RECEIPT",
		[]models.CaseStatus{models.CaseStatusCreditAdminReturned},
		map[string]any{
			"document_receipt_completed": false,
			"document_receipt_actor":     actor.Username,
			"document_receipt_note":      req.Note,
			"status":                     models.CaseStatusAccountManagerRejected,
			"updated_at":                 utils.UTCNow(),
		})
}

// transition runs one guarded state change. The conditional update keys on
// the current status, so two actors racing on the same record cannot both
// win; the loser refetches and learns the actual final state.
func (s *CaseFlowImpl) transition(ctx context.Context, id uint, code string, allowedFrom []models.CaseStatus, updates map[string]any) (*dto.CaseRecordResponse, error) {
	affected, err := s.caseRepo.ApplyTransition(ctx, id, allowedFrom, updates)
	if err != nil {
		return nil, NewBusinessError(code+"_FAILED", "Transition failed", err)
	}

	if affected == 0 {
		record, err := s.caseRepo.ByID(ctx, id)
		if err != nil {
			return nil, NewBusinessError(code+"_FAILED", "Transition failed", err)
		}
		if record == nil {
			return nil, NewBusinessError(code+"_FAILED", "Transition failed", ErrCaseNotFound)
		}
		for _, status := range allowedFrom {
			if record.Status == status {
				// The guard matched on refetch, so another writer briefly held
				// the row. Ask the caller to retry.
				return nil, NewBusinessErrorf(code+"_CONFLICT", "Record is in status %q", ErrTransitionConflict, record.Status)
			}
		}
		return nil, NewBusinessErrorf(code+"_NOT_ALLOWED", "Record is in status %q", ErrInvalidTransition, record.Status)
	}

	record, err := s.caseRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError(code+"_FAILED", "Transition failed", err)
	}
	if record == nil {
		return nil, NewBusinessError(code+"_FAILED", "Transition failed", ErrCaseNotFound)
	}

	s.invalidateDashboardCache(ctx)

	return &dto.CaseRecordResponse{
		Message: "Transition applied",
		Record:  ToCaseRecordDTO(*record),
	}, nil
}

// invalidateDashboardCache drops the cached dashboard payload after any mutation
func (s *CaseFlowImpl) invalidateDashboardCache(ctx context.Context) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	key := redisKey(*s.cacheConfig, utils.DashboardCacheKey)
	if err := s.rc.Del(ctx, key).Err(); err != nil {
		log.Printf("failed to invalidate dashboard cache: %v", err)
	}
}
