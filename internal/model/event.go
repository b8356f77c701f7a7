package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип доменного события.
type EventType string

const (
	EventTypeEnrollmentCreated   EventType = "enrollment_created"
	EventTypeEnrollmentConfirmed EventType = "enrollment_confirmed"
	EventTypeEnrollmentCancelled EventType = "enrollment_cancelled"
	EventTypeSessionCreated      EventType = "session_created"
	EventTypeSessionUpdated      EventType = "session_updated"
)

// events — журнал доменных событий.
// Строка пишется в той же транзакции, что и породившая её операция;
// доставка наружу (уведомления) выполняется уже после коммита.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	SessionID    *uuid.UUID `gorm:"type:uuid;index"`
	EnrollmentID *uuid.UUID `gorm:"type:uuid;index"`

	// Полезная нагрузка для слоя уведомлений: имена, адреса, токены, даты.
	Payload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}
