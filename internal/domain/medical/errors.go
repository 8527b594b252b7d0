package medical

import "errors"

var (
	ErrExamNotFound = errors.New("medical exam not found")
	ErrSyncTimeout  = errors.New("medical records sync timed out")
	ErrSyncDisabled = errors.New("esmo sync is disabled")
)
