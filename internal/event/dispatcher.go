package event

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zooplan/training-platform/internal/model"
)

// Notification — исходящее доменное событие для слоя уведомлений.
// Операции ядра возвращают список таких событий, и диспетчеризация
// выполняется строго после коммита транзакции: вызов внутри транзакции
// дал бы уведомления о незакоммиченных изменениях.
type Notification struct {
	Type         model.EventType
	CompanyID    uuid.UUID
	SessionID    *uuid.UUID
	EnrollmentID *uuid.UUID

	// Данные для рендеринга уведомления: имена, адреса, токены,
	// дата и время. Рендеринг и доставка — внешние подсистемы.
	Payload map[string]any
}

// Dispatcher принимает события после коммита.
type Dispatcher interface {
	Dispatch(ctx context.Context, notes []Notification)
}

// LogDispatcher — реализация по умолчанию: пишет события в лог.
// Реальная доставка подключается снаружи тем же интерфейсом.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, notes []Notification) {
	for _, n := range notes {
		d.log.Info("domain event",
			zap.String("type", string(n.Type)),
			zap.String("company_id", n.CompanyID.String()),
			zap.Any("payload", n.Payload),
		)
	}
}
