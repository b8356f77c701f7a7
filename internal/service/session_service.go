package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/event"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
	"github.com/zooplan/training-platform/internal/schedule"
)

// SessionService — прямое создание сессий, листинг и sweep просрочки.
type SessionService struct {
	db *gorm.DB

	trainers repository.TrainerRepository
	packages repository.PackageRepository
	sessions repository.SessionRepository
	events   repository.EventRepository

	dispatcher event.Dispatcher
	log        *zap.Logger
}

func NewSessionService(
	db *gorm.DB,
	trainers repository.TrainerRepository,
	packages repository.PackageRepository,
	sessions repository.SessionRepository,
	events repository.EventRepository,
	dispatcher event.Dispatcher,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		db:         db,
		trainers:   trainers,
		packages:   packages,
		sessions:   sessions,
		events:     events,
		dispatcher: dispatcher,
		log:        log,
	}
}

// SessionInput — сессия, создаваемая вручную, в обход генератора.
type SessionInput struct {
	TrainerID       uuid.UUID
	PackageID       uuid.UUID
	Date            string
	StartTime       string
	EndTime         string
	MaxParticipants int
}

// Create создаёт одиночную сессию. Пересечение с другой неотменённой
// сессией тренера на ту же дату — Conflict; предикат пересечения тот
// же, что у генератора.
func (s *SessionService) Create(ctx context.Context, companyID uuid.UUID, in SessionInput) (*model.Session, error) {
	if _, err := s.trainers.GetByID(ctx, companyID, in.TrainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("trainer not found")
		}
		return nil, apperr.Internal("load trainer", err)
	}
	if _, err := s.packages.GetByID(ctx, companyID, in.PackageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("package not found")
		}
		return nil, apperr.Internal("load package", err)
	}

	span, err := schedule.ParseClockSpan(in.StartTime, in.EndTime)
	if err != nil {
		return nil, apperr.BadRequest("invalid time range: " + err.Error())
	}
	day, err := schedule.ParseDate(in.Date)
	if err != nil {
		return nil, apperr.BadRequest("invalid date")
	}
	if in.MaxParticipants <= 0 {
		return nil, apperr.BadRequest("max participants must be positive")
	}

	existing, err := s.sessions.ListBlockingByTrainerAndDate(ctx, companyID, in.TrainerID, day)
	if err != nil {
		return nil, apperr.Internal("conflict lookup", err)
	}
	for i := range existing {
		other, err := schedule.ParseClockSpan(existing[i].StartTime, existing[i].EndTime)
		if err != nil {
			continue
		}
		if span.Overlaps(other) {
			return nil, apperr.Conflict("time conflict with an existing session")
		}
	}

	sess := &model.Session{
		ID:              uuid.New(),
		CompanyID:       companyID,
		TrainerID:       in.TrainerID,
		PackageID:       in.PackageID,
		Date:            datatypes.Date(day),
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		MaxParticipants: in.MaxParticipants,
		AvailableSlots:  in.MaxParticipants,
		Status:          model.SessionStatusScheduled,
		ExternalKey:     newExternalKey(),
	}

	note := sessionNotification(model.EventTypeSessionCreated, sess)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sessions.WithTx(tx).Create(ctx, sess); err != nil {
			return err
		}
		return s.events.WithTx(tx).Create(ctx, notificationRow(note))
	})
	if err != nil {
		return nil, apperr.Internal("create session", err)
	}
	s.dispatcher.Dispatch(ctx, []event.Notification{note})

	return sess, nil
}

// List возвращает страницу сессий тренера за интервал дат.
func (s *SessionService) List(ctx context.Context, companyID, trainerID uuid.UUID, from, to time.Time, page, pageSize int) (schedule.Page[model.Session], error) {
	list, err := s.sessions.ListByTrainerRange(ctx, companyID, trainerID, from, to)
	if err != nil {
		return schedule.Page[model.Session]{}, apperr.Internal("list sessions", err)
	}
	return schedule.Paginate(list, page, pageSize), nil
}

// ExpireStale переводит просроченные active/scheduled сессии в expired.
// Запускается периодическим sweep-ом из cmd.
func (s *SessionService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.sessions.ExpireStale(ctx, schedule.DateOnly(now))
	if err != nil {
		return 0, apperr.Internal("expire stale sessions", err)
	}
	if n > 0 {
		s.log.Info("stale sessions expired", zap.Int64("count", n))
	}
	return n, nil
}
