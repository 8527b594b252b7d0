package medical

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, exam Exam) (Exam, error)
	Update(ctx context.Context, exam Exam) error
	GetByEsmoID(ctx context.Context, esmoID int64) (Exam, error)
	List(ctx context.Context, filter Filter) ([]Exam, error)
	CountByResult(ctx context.Context, from, to time.Time) (total, passed, failed int64, err error)
	MaxEsmoID(ctx context.Context) (*int64, error)

	// ListForLatestPerEmployee returns exams on allowed terminals in the given
	// local-time window, newest first with deterministic tie order
	// (timestamp desc, esmo_id desc nulls last, id desc).
	ListForLatestPerEmployee(ctx context.Context, terminalNames []string, from, to *time.Time) ([]Exam, error)
}
