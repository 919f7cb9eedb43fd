package model

import (
	"time"

	"rally/shared/model"
)

const (
	TableName  = "courts"
	EntityName = "court"

	FieldID        = "id"
	FieldName      = "name"
	FieldLocation  = "location"
	FieldOpenTime  = "open_time"
	FieldCloseTime = "close_time"
	FieldImage     = "image"
	FieldActive    = "active"
)

type Court struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	OpenTime  time.Time `db:"open_time"`
	CloseTime time.Time `db:"close_time"`
	Image     string    `db:"image"`
	Active    bool      `db:"active"`
	model.Metadata
}
