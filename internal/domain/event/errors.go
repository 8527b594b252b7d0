package event

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrDeviceMismatch = errors.New("api key/device mismatch")
	ErrNoRecentEsmoOK = errors.New("no recent ESMO_OK")
)
