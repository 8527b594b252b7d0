package device

import "time"

type Type string

const (
	TypeHikvision Type = "HIKVISION"
	TypeToolFace  Type = "TOOL_FACE"
	TypeMineFace  Type = "MINE_FACE"
	TypeEsmo      Type = "ESMO"
	TypeOther     Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeHikvision, TypeToolFace, TypeMineFace, TypeEsmo, TypeOther:
		return true
	}
	return false
}

type Device struct {
	ID         int64
	Name       string
	DeviceCode string
	Host       *string
	DeviceType Type
	Location   *string
	APIKey     string
	IsActive   bool
	LastSeen   *time.Time
	CreatedAt  time.Time
}
