package models

import (
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
)

// ReconciliationCheckpoint marks the close of a reporting window. A Z report
// writes one row transactionally with its read; the next window starts at the
// latest GeneratedAt. X reports never write here.
type ReconciliationCheckpoint struct {
	ID          int64            `gorm:"column:id;primaryKey;autoIncrement"`
	GeneratedAt time.Time        `gorm:"column:generated_at;not null;index"`
	GeneratedBy int64            `gorm:"column:generated_by;not null"`
	Kind        enums.ReportKind `gorm:"column:kind;type:report_kind_enum;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
