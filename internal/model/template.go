package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Правило повторения шаблона.
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "once"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// session_templates — чертёж повторяющегося занятия.
// Генератор разворачивает шаблон в конкретные сессии внутри окна
// [start_date, end_date].
type SessionTemplate struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(255);not null"`

	StartTime string `gorm:"type:varchar(5);not null"`
	EndTime   string `gorm:"type:varchar(5);not null"`

	Recurrence Recurrence `gorm:"type:varchar(16);not null"`

	// Дни недели для recurrence = weekly: 0 = воскресенье ... 6 = суббота.
	// Для остальных правил пустой.
	Weekdays datatypes.JSONSlice[int] `gorm:"type:jsonb"`

	StartDate datatypes.Date `gorm:"type:date;not null"`
	EndDate   datatypes.Date `gorm:"type:date;not null"`

	MaxParticipants int `gorm:"not null;default:1"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Trainer *Trainer `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Package *Package `gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
