package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandoffTouched(t *testing.T) {
	assert.False(t, Handoff{}.Touched())
	assert.True(t, Handoff{Completed: true}.Touched())
	assert.True(t, Handoff{Actor: "qttd_01"}.Touched())
	assert.True(t, Handoff{Completed: false, Actor: "qttd_01", Note: "thiếu chứng từ"}.Touched())
}

func TestDeriveStatus(t *testing.T) {
	done := Handoff{Completed: true, Actor: "someone"}
	rejected := Handoff{Completed: false, Actor: "someone", Note: "rejected"}

	tests := []struct {
		name   string
		record CaseRecord
		want   CaseStatus
	}{
		{
			name:   "untouched record",
			record: CaseRecord{},
			want:   CaseStatusNew,
		},
		{
			name:   "handed over",
			record: CaseRecord{Handover: done},
			want:   CaseStatusInProgress,
		},
		{
			name:   "received by credit admin",
			record: CaseRecord{Handover: done, Receipt: done},
			want:   CaseStatusCreditAdminReceived,
		},
		{
			name:   "intake rejected",
			record: CaseRecord{Handover: done, Receipt: rejected},
			want:   CaseStatusCreditAdminRejected,
		},
		{
			name:   "returned to branch",
			record: CaseRecord{Handover: done, Receipt: done, Return: done},
			want:   CaseStatusCreditAdminReturned,
		},
		{
			name:   "documents confirmed",
			record: CaseRecord{Handover: done, Receipt: done, Return: done, DocumentReceipt: done},
			want:   CaseStatusComplete,
		},
		{
			name:   "documents refused",
			record: CaseRecord{Handover: done, Receipt: done, Return: done, DocumentReceipt: rejected},
			want:   CaseStatusAccountManagerRejected,
		},
		{
			name:   "later step wins over earlier rejection",
			record: CaseRecord{Handover: done, Receipt: done, Return: done, DocumentReceipt: done, Note: "was rejected once"},
			want:   CaseStatusComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.DeriveStatus())
		})
	}
}

func TestPendingCreditAdminIntake(t *testing.T) {
	done := Handoff{Completed: true, Actor: "gd_01"}

	assert.False(t, (&CaseRecord{}).PendingCreditAdminIntake())
	assert.True(t, (&CaseRecord{Handover: done}).PendingCreditAdminIntake())
	assert.False(t, (&CaseRecord{Handover: done, Receipt: done}).PendingCreditAdminIntake())

	// A rejected intake drops out of the inbox until it is handed over again
	rejected := CaseRecord{Handover: done, Receipt: Handoff{Actor: "qttd_01", Note: "no"}}
	assert.False(t, rejected.PendingCreditAdminIntake())
	assert.Equal(t, CaseStatusCreditAdminRejected, rejected.DeriveStatus())
}
