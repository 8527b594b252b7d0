package medical

import (
	"context"
	"time"
)

type Service interface {
	ListExams(ctx context.Context, filter Filter) ([]ExamResponse, error)
	Stats(ctx context.Context, targetDate time.Time) (DayStats, error)

	// SyncExams pulls fresh exams from the ESMO portal. The portal is slow;
	// callers bound the whole sync with a timeout and surface ErrSyncTimeout.
	SyncExams(ctx context.Context) (SyncResult, error)

	PortalEmployees(ctx context.Context) ([]PortalEmployee, error)
	SyncEmployees(ctx context.Context) (EmployeeSyncResult, error)
}
