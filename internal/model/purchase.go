package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус покупки пакета.
type PurchaseStatus string

const (
	PurchaseStatusActive  PurchaseStatus = "active"
	PurchaseStatusExpired PurchaseStatus = "expired"
	PurchaseStatusUsed    PurchaseStatus = "used"
)

// package_purchases — владение пакетом конкретным клиентом.
// Счётчик used_sessions ведёт расход кредитов; инвариант:
// 0 <= used_sessions <= package.total_sessions.
// Активная покупка на пару (tutor, package) может быть только одна.
type PackagePurchase struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Снимок package.total_sessions на момент покупки: guard-обновления
	// счётчика не должны ходить в соседнюю таблицу.
	TotalSessions int `gorm:"not null"`

	UsedSessions int `gorm:"not null;default:0"`

	Status PurchaseStatus `gorm:"type:varchar(32);not null;default:'active';index"`

	ExpiresAt *time.Time `gorm:"type:timestamp with time zone"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Tutor   *Tutor   `gorm:"foreignKey:TutorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Package *Package `gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
