package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// availability_configs — рабочие часы тренера. Одна запись на тренера.
// Времена храним строками "HH:mm": сравнение лексикографическое,
// интерпретация — в таймзоне тренера.
type AvailabilityConfig struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	WorkStart string `gorm:"type:varchar(5);not null"`
	WorkEnd   string `gorm:"type:varchar(5);not null"`

	// Длительность одного занятия в минутах.
	SlotDurationMin int `gorm:"not null;default:60"`

	// Обеденный перерыв, опционально.
	LunchStart *string `gorm:"type:varchar(5)"`
	LunchEnd   *string `gorm:"type:varchar(5)"`

	// Второй перерыв, опционально.
	BreakStart *string `gorm:"type:varchar(5)"`
	BreakEnd   *string `gorm:"type:varchar(5)"`

	// Рабочие дни недели: 0 = воскресенье ... 6 = суббота.
	WorkingDays datatypes.JSONSlice[int] `gorm:"type:jsonb"`

	TimeZone string `gorm:"type:varchar(64);not null;default:'UTC'"`

	// Буфер между занятиями, минут.
	BufferMin int `gorm:"not null;default:0"`

	MaxBookingsPerDay int `gorm:"not null;default:0"`

	// Метаданные окна бронирования. Генерация и запись их не применяют —
	// поведение оригинала сохранено, поля остаются информационными.
	AdvanceBookingDays int `gorm:"not null;default:0"`
	MinNoticeHours     int `gorm:"not null;default:0"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Trainer *Trainer `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Тип исключения из расписания.
type ExceptionType string

const (
	ExceptionTypeBlocked     ExceptionType = "blocked"
	ExceptionTypeCustomHours ExceptionType = "custom_hours"
)

// availability_exceptions — точечные отступления от рабочих часов.
// Уникальны по паре (trainer, date).
type AvailabilityException struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;index:idx_exception_trainer_date,unique"`

	Date datatypes.Date `gorm:"type:date;not null;index:idx_exception_trainer_date,unique"`

	Type ExceptionType `gorm:"type:varchar(32);not null"`

	// Для custom_hours: замещающие рабочие часы, start < end.
	StartTime *string `gorm:"type:varchar(5)"`
	EndTime   *string `gorm:"type:varchar(5)"`

	Reason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Trainer *Trainer `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
