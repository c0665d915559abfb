package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaseRepository keeps records in memory and mimics the conditional
// update semantics of the real repository
type fakeCaseRepository struct {
	records map[uint]*models.CaseRecord
	nextID  uint

	// When set, ApplyTransition reports zero rows regardless of state, as if
	// a concurrent writer held the row
	forceZeroRows bool

	// Arguments of the last ByFilter call, for filter assertions
	lastFilter models.CaseRecordFilter
	lastLimit  int
	lastOffset int
}

func newFakeCaseRepo() *fakeCaseRepository {
	return &fakeCaseRepository{records: make(map[uint]*models.CaseRecord), nextID: 1}
}

func (f *fakeCaseRepository) seed(record *models.CaseRecord) *models.CaseRecord {
	record.ID = f.nextID
	f.nextID++
	f.records[record.ID] = record
	return record
}

func (f *fakeCaseRepository) ByID(ctx context.Context, id uint) (*models.CaseRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeCaseRepository) ByFilter(ctx context.Context, filter models.CaseRecordFilter, orderBy string, limit, offset int) ([]*models.CaseRecord, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	f.lastOffset = offset

	var rows []*models.CaseRecord
	for _, record := range f.records {
		clone := *record
		rows = append(rows, &clone)
	}
	return rows, nil
}

func (f *fakeCaseRepository) Save(ctx context.Context, record *models.CaseRecord) error {
	f.seed(record)
	return nil
}

func (f *fakeCaseRepository) SaveBatch(ctx context.Context, records []*models.CaseRecord) error {
	for _, record := range records {
		f.seed(record)
	}
	return nil
}

func (f *fakeCaseRepository) Count(ctx context.Context, filter models.CaseRecordFilter) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeCaseRepository) Exists(ctx context.Context, filter models.CaseRecordFilter) (bool, error) {
	return len(f.records) > 0, nil
}

func (f *fakeCaseRepository) Update(ctx context.Context, record *models.CaseRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeCaseRepository) Delete(ctx context.Context, id uint) error {
	delete(f.records, id)
	return nil
}

func (f *fakeCaseRepository) ListPendingCreditAdminIntake(ctx context.Context, limit, offset int) ([]*models.CaseRecord, error) {
	var rows []*models.CaseRecord
	for _, record := range f.records {
		if record.PendingCreditAdminIntake() {
			clone := *record
			rows = append(rows, &clone)
		}
	}
	return rows, nil
}

func (f *fakeCaseRepository) CountPendingCreditAdminIntake(ctx context.Context) (int64, error) {
	rows, _ := f.ListPendingCreditAdminIntake(ctx, 0, 0)
	return int64(len(rows)), nil
}

func (f *fakeCaseRepository) ApplyTransition(ctx context.Context, id uint, allowedFrom []models.CaseStatus, updates map[string]any) (int64, error) {
	if f.forceZeroRows {
		return 0, nil
	}

	record, ok := f.records[id]
	if !ok {
		return 0, nil
	}

	allowed := false
	for _, status := range allowedFrom {
		if record.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, nil
	}

	applyUpdate := func(step *models.Handoff, prefix string) {
		if v, ok := updates[prefix+"_completed"]; ok {
			step.Completed = v.(bool)
		}
		if v, ok := updates[prefix+"_actor"]; ok {
			step.Actor = v.(string)
		}
		if v, ok := updates[prefix+"_note"]; ok {
			step.Note = v.(string)
		}
	}
	applyUpdate(&record.Handover, "handover")
	applyUpdate(&record.Receipt, "receipt")
	applyUpdate(&record.Return, "return")
	applyUpdate(&record.DocumentReceipt, "document_receipt")

	if v, ok := updates["status"]; ok {
		record.Status = v.(models.CaseStatus)
	}
	if v, ok := updates["updated_at"]; ok {
		record.UpdatedAt = v.(time.Time)
	}

	return 1, nil
}

func newTestCaseFlow(repo *fakeCaseRepository) CaseFlow {
	return NewCaseFlow(repo, nil, nil, nil)
}

func testActor(username string, role models.Role) *Actor {
	return &Actor{AccountID: 1, Username: username, Role: role}
}

func TestCreateCaseRecordStartsNew(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)

	resp, err := flow.CreateCaseRecord(context.Background(), &dto.CreateCaseRecordRequest{
		AccountNumber: "ACC100",
		CustomerName:  "Công ty B",
		Currency:      "VND",
	}, testActor("qlkh_01", models.RoleAccountManager), nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusNew), resp.Record.Status)
	assert.False(t, resp.Record.Handover.Completed)
}

func TestHandoverTransition(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{Status: models.CaseStatusNew})

	resp, err := flow.Handover(context.Background(), record.ID,
		&dto.TransitionRequest{Note: "bàn giao hồ sơ"}, testActor("gd_01", models.RoleBoardDirector), nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusInProgress), resp.Record.Status)
	assert.True(t, resp.Record.Handover.Completed)
	assert.Equal(t, "gd_01", resp.Record.Handover.Actor)
	assert.Equal(t, "bàn giao hồ sơ", resp.Record.Handover.Note)
}

func TestHandoverAfterRejectionResetsReceipt(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{
		Status:   models.CaseStatusCreditAdminRejected,
		Handover: models.Handoff{Completed: true, Actor: "gd_01"},
		Receipt:  models.Handoff{Completed: false, Actor: "qttd_01", Note: "thiếu chứng từ"},
	})

	resp, err := flow.Handover(context.Background(), record.ID,
		&dto.TransitionRequest{Note: "bổ sung xong"}, testActor("gd_01", models.RoleBoardDirector), nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusInProgress), resp.Record.Status)
	assert.False(t, resp.Record.Receipt.Completed)
	assert.Empty(t, resp.Record.Receipt.Actor)
	assert.Empty(t, resp.Record.Receipt.Note)
}

func TestFullWorkflowHappyPath(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{Status: models.CaseStatusNew})
	ctx := context.Background()

	director := testActor("gd_01", models.RoleBoardDirector)
	creditAdmin := testActor("qttd_01", models.RoleCreditAdmin)
	manager := testActor("qlkh_01", models.RoleAccountManager)

	_, err := flow.Handover(ctx, record.ID, &dto.TransitionRequest{}, director, nil)
	require.NoError(t, err)

	_, err = flow.Receive(ctx, record.ID, &dto.TransitionRequest{}, creditAdmin, nil)
	require.NoError(t, err)

	_, err = flow.ReturnToBranch(ctx, record.ID, &dto.TransitionRequest{}, creditAdmin, nil)
	require.NoError(t, err)

	resp, err := flow.ConfirmDocumentReceipt(ctx, record.ID, &dto.TransitionRequest{}, manager, nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusComplete), resp.Record.Status)
	assert.Equal(t, "qlkh_01", resp.Record.DocumentReceipt.Actor)
}

func TestRejectIntakeRecordsActor(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{
		Status:   models.CaseStatusInProgress,
		Handover: models.Handoff{Completed: true, Actor: "gd_01"},
	})

	resp, err := flow.RejectIntake(context.Background(), record.ID,
		&dto.TransitionRequest{Note: "thiếu hợp đồng"}, testActor("qttd_01", models.RoleCreditAdmin), nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusCreditAdminRejected), resp.Record.Status)
	assert.False(t, resp.Record.Receipt.Completed)
	assert.Equal(t, "qttd_01", resp.Record.Receipt.Actor)
	assert.Equal(t, "thiếu hợp đồng", resp.Record.Receipt.Note)
}

func TestRejectDocumentReceipt(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{
		Status:   models.CaseStatusCreditAdminReturned,
		Handover: models.Handoff{Completed: true, Actor: "gd_01"},
		Receipt:  models.Handoff{Completed: true, Actor: "qttd_01"},
		Return:   models.Handoff{Completed: true, Actor: "qttd_01"},
	})

	resp, err := flow.RejectDocumentReceipt(context.Background(), record.ID,
		&dto.TransitionRequest{Note: "hồ sơ không khớp"}, testActor("qlkh_01", models.RoleAccountManager), nil)
	require.NoError(t, err)

	assert.Equal(t, string(models.CaseStatusAccountManagerRejected), resp.Record.Status)
	assert.False(t, resp.Record.DocumentReceipt.Completed)
	assert.Equal(t, "qlkh_01", resp.Record.DocumentReceipt.Actor)
}

func TestTransitionFromWrongStatus(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	ctx := context.Background()
	creditAdmin := testActor("qttd_01", models.RoleCreditAdmin)

	tests := []struct {
		name string
		from models.CaseStatus
		call func(id uint) error
	}{
		{
			name: "receive before handover",
			from: models.CaseStatusNew,
			call: func(id uint) error {
				_, err := flow.Receive(ctx, id, &dto.TransitionRequest{}, creditAdmin, nil)
				return err
			},
		},
		{
			name: "handover of completed record",
			from: models.CaseStatusComplete,
			call: func(id uint) error {
				_, err := flow.Handover(ctx, id, &dto.TransitionRequest{}, creditAdmin, nil)
				return err
			},
		},
		{
			name: "return before receive",
			from: models.CaseStatusInProgress,
			call: func(id uint) error {
				_, err := flow.ReturnToBranch(ctx, id, &dto.TransitionRequest{}, creditAdmin, nil)
				return err
			},
		},
		{
			name: "confirm documents before return",
			from: models.CaseStatusCreditAdminReceived,
			call: func(id uint) error {
				_, err := flow.ConfirmDocumentReceipt(ctx, id, &dto.TransitionRequest{}, creditAdmin, nil)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := repo.seed(&models.CaseRecord{Status: tt.from})
			err := tt.call(record.ID)
			require.Error(t, err)
			assert.True(t, IsInvalidTransition(err))
			// The error carries the actual status for the caller
			assert.Contains(t, err.Error(), string(tt.from))
		})
	}
}

func TestTransitionMissingRecord(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)

	_, err := flow.Handover(context.Background(), 999,
		&dto.TransitionRequest{}, testActor("gd_01", models.RoleBoardDirector), nil)
	assert.True(t, IsCaseNotFound(err))
}

func TestTransitionConflict(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	record := repo.seed(&models.CaseRecord{Status: models.CaseStatusNew})

	// The guarded update reports zero rows while the refetch still shows an
	// allowed status, the signature of losing a race
	repo.forceZeroRows = true

	_, err := flow.Handover(context.Background(), record.ID,
		&dto.TransitionRequest{}, testActor("gd_01", models.RoleBoardDirector), nil)
	assert.True(t, IsTransitionConflict(err))
}

func TestGetCaseRecordNotFound(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)

	_, err := flow.GetCaseRecord(context.Background(), 42, nil)
	assert.True(t, IsCaseNotFound(err))
}

func TestListCaseRecordsDateWindow(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)

	_, err := flow.ListCaseRecords(context.Background(), &dto.ListCaseRecordsRequest{
		FromDate: utils.ToPtr("2024-01-01"),
		ToDate:   utils.ToPtr("2024-01-31"),
	}, nil)
	require.NoError(t, err)

	// The window lands on the disbursement date bounds, end date inclusive
	require.NotNil(t, repo.lastFilter.DisbursedAfter)
	require.NotNil(t, repo.lastFilter.DisbursedBefore)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.DisbursedAfter)
	assert.Equal(t, 31, repo.lastFilter.DisbursedBefore.Day())
	assert.Equal(t, 23, repo.lastFilter.DisbursedBefore.Hour())

	_, err = flow.ListCaseRecords(context.Background(), &dto.ListCaseRecordsRequest{
		FromDate: utils.ToPtr("2024-03-01"),
		ToDate:   utils.ToPtr("2024-01-01"),
	}, nil)
	assert.True(t, IsStartDateAfterEndDate(err))

	_, err = flow.ListCaseRecords(context.Background(), &dto.ListCaseRecordsRequest{}, nil)
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.DisbursedAfter)
	assert.Nil(t, repo.lastFilter.DisbursedBefore)
}

func TestListCaseRecordsLimitAlias(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)
	ctx := context.Background()

	resp, err := flow.ListCaseRecords(ctx, &dto.ListCaseRecordsRequest{Limit: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.PageSize)
	assert.Equal(t, 7, repo.lastLimit)

	// An explicit page_size wins over the alias
	resp, err = flow.ListCaseRecords(ctx, &dto.ListCaseRecordsRequest{PageSize: 15, Limit: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, resp.PageSize)
}

func TestListPendingIntake(t *testing.T) {
	repo := newFakeCaseRepo()
	flow := newTestCaseFlow(repo)

	repo.seed(&models.CaseRecord{Status: models.CaseStatusNew})
	repo.seed(&models.CaseRecord{
		Status:   models.CaseStatusInProgress,
		Handover: models.Handoff{Completed: true, Actor: "gd_01"},
	})
	repo.seed(&models.CaseRecord{
		Status:   models.CaseStatusCreditAdminRejected,
		Handover: models.Handoff{Completed: true, Actor: "gd_01"},
		Receipt:  models.Handoff{Actor: "qttd_01", Note: "thiếu chứng từ"},
	})

	resp, err := flow.ListPendingIntake(context.Background(), 1, 10, nil)
	require.NoError(t, err)

	// Only the handed-over, untouched record sits in the inbox
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, string(models.CaseStatusInProgress), resp.Records[0].Status)
}
