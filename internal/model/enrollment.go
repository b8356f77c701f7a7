package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус записи на занятие.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusConfirmed EnrollmentStatus = "confirmed"
	EnrollmentStatusCheckedIn EnrollmentStatus = "checked_in"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
	EnrollmentStatusNoShow    EnrollmentStatus = "no_show"
)

// enrollments — запись пары (клиент, питомец) на конкретную сессию.
// Оба токена одноразовые, выдаются при создании и не перевыпускаются.
// Отмена терминальна и необратима.
type Enrollment struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TutorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PetID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PurchaseID uuid.UUID `gorm:"type:uuid;not null;index"`

	Status EnrollmentStatus `gorm:"type:varchar(32);not null;default:'enrolled';index"`

	ConfirmationToken string `gorm:"type:varchar(64);not null;uniqueIndex"`
	CancellationToken string `gorm:"type:varchar(64);not null;uniqueIndex"`

	CancellationReason string `gorm:"type:text"`

	EnrolledAt  time.Time  `gorm:"not null;default:now()"`
	ConfirmedAt *time.Time `gorm:"type:timestamp with time zone"`
	CheckedInAt *time.Time `gorm:"type:timestamp with time zone"`
	CancelledAt *time.Time `gorm:"type:timestamp with time zone"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Session  *Session         `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Tutor    *Tutor           `gorm:"foreignKey:TutorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Pet      *Pet             `gorm:"foreignKey:PetID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Purchase *PackagePurchase `gorm:"foreignKey:PurchaseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// IsTerminal сообщает, возможны ли дальнейшие переходы статуса.
func (e *Enrollment) IsTerminal() bool {
	switch e.Status {
	case EnrollmentStatusCancelled, EnrollmentStatusCheckedIn, EnrollmentStatusNoShow:
		return true
	default:
		return false
	}
}
