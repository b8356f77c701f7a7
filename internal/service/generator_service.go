package service

import (
	"context"
	"encoding/json"
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

// SkippedDate — отбракованная дата-кандидат и причина отказа.
// Вызывающий должен видеть, почему дата пропущена, а не только факт.
type SkippedDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// GeneratedSession — краткая сводка по созданной сессии.
type GeneratedSession struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	ExternalKey string    `json:"external_key"`
}

// GenerationReport — итог прогона генератора по шаблону.
type GenerationReport struct {
	Generated int                `json:"generated"`
	Skipped   int                `json:"skipped"`
	Conflicts []SkippedDate      `json:"conflicts"`
	Sessions  []GeneratedSession `json:"sessions"`
}

// GeneratorService разворачивает шаблон в конкретные сессии.
type GeneratorService struct {
	db *gorm.DB

	templates    repository.TemplateRepository
	trainers     repository.TrainerRepository
	availability repository.AvailabilityRepository
	sessions     repository.SessionRepository
	events       repository.EventRepository

	dispatcher event.Dispatcher
	log        *zap.Logger
}

func NewGeneratorService(
	db *gorm.DB,
	templates repository.TemplateRepository,
	trainers repository.TrainerRepository,
	availability repository.AvailabilityRepository,
	sessions repository.SessionRepository,
	events repository.EventRepository,
	dispatcher event.Dispatcher,
	log *zap.Logger,
) *GeneratorService {
	return &GeneratorService{
		db:           db,
		templates:    templates,
		trainers:     trainers,
		availability: availability,
		sessions:     sessions,
		events:       events,
		dispatcher:   dispatcher,
		log:          log,
	}
}

// Причины отбраковки. Per-date отказ — не ошибка прогона: он попадает
// в отчёт, и прогон с нулём успехов на корректных входных данных
// всё равно завершается успешно.
const (
	reasonNotWorkingDay   = "not a working day"
	reasonBlocked         = "date is blocked"
	reasonSessionConflict = "time conflict with an existing session"
	reasonOutsideHours    = "outside trainer work hours"
	reasonLunchOverlap    = "overlaps lunch break"
	reasonBreakOverlap    = "overlaps secondary break"
)

// Generate разворачивает шаблон в сессии внутри интервала
// [rangeStart, rangeEnd], обрезанного к окну действия шаблона.
// Структурные предусловия (шаблон, конфигурация доступности, набор
// дней недели) проверяются до перебора дат и прерывают весь прогон.
func (s *GeneratorService) Generate(
	ctx context.Context,
	companyID, templateID uuid.UUID,
	rangeStart, rangeEnd time.Time,
) (*GenerationReport, error) {
	tpl, err := s.templates.GetByID(ctx, companyID, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("template not found")
		}
		return nil, apperr.Internal("load template", err)
	}
	if !tpl.IsActive {
		return nil, apperr.BadRequest("template is inactive")
	}

	if _, err := s.trainers.GetByID(ctx, companyID, tpl.TrainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("trainer not found")
		}
		return nil, apperr.Internal("load trainer", err)
	}

	// Конфигурация доступности читается заново на каждый прогон,
	// межзапросного кэша нет.
	cfg, err := s.availability.ActiveConfigByTrainer(ctx, companyID, tpl.TrainerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.BadRequest("trainer has no active availability config")
		}
		return nil, apperr.Internal("load availability config", err)
	}

	tplSpan, err := schedule.ParseClockSpan(tpl.StartTime, tpl.EndTime)
	if err != nil {
		return nil, apperr.BadRequest("template has invalid time range")
	}
	workSpan, err := schedule.ParseClockSpan(cfg.WorkStart, cfg.WorkEnd)
	if err != nil {
		return nil, apperr.BadRequest("availability config has invalid work hours")
	}
	lunchSpan, err := optionalSpan(cfg.LunchStart, cfg.LunchEnd)
	if err != nil {
		return nil, apperr.BadRequest("availability config has invalid lunch break")
	}
	breakSpan, err := optionalSpan(cfg.BreakStart, cfg.BreakEnd)
	if err != nil {
		return nil, apperr.BadRequest("availability config has invalid secondary break")
	}

	// Шаг 1: обрезаем запрошенный интервал к окну действия шаблона.
	// Все даты нормализованы к полуночи UTC до любых сравнений.
	actualStart := schedule.MaxDate(schedule.DateOnly(rangeStart), schedule.DateOnly(time.Time(tpl.StartDate)))
	actualEnd := schedule.MinDate(schedule.DateOnly(rangeEnd), schedule.DateOnly(time.Time(tpl.EndDate)))

	report := &GenerationReport{
		Conflicts: []SkippedDate{},
		Sessions:  []GeneratedSession{},
	}
	if actualEnd.Before(actualStart) {
		return report, nil
	}

	// Шаг 2: перебор дат-кандидатов по правилу повторения.
	candidates, err := schedule.Occurrences(
		schedule.Frequency(tpl.Recurrence),
		time.Time(tpl.StartDate),
		schedule.NewWeekdaySet(tpl.Weekdays),
		actualStart, actualEnd,
	)
	if err != nil {
		if errors.Is(err, schedule.ErrEmptyWeekdaySet) {
			return nil, apperr.BadRequest("weekly template requires a weekday set")
		}
		return nil, apperr.BadRequest("unsupported recurrence")
	}

	workingDays := schedule.NewWeekdaySet(cfg.WorkingDays)

	exceptions, err := s.availability.ListExceptions(ctx, companyID, tpl.TrainerID, actualStart, actualEnd)
	if err != nil {
		return nil, apperr.Internal("load exceptions", err)
	}
	exByDate := make(map[string]*model.AvailabilityException, len(exceptions))
	for i := range exceptions {
		exByDate[schedule.FormatDate(time.Time(exceptions[i].Date))] = &exceptions[i]
	}

	// Шаг 3: фильтры допуска в фиксированном порядке; фиксируется
	// первая причина отказа.
	var created []model.Session
	for _, day := range candidates {
		if reason, ok := s.admitDate(ctx, companyID, tpl, day, workingDays, workSpan, lunchSpan, breakSpan, tplSpan, exByDate); !ok {
			report.Skipped++
			report.Conflicts = append(report.Conflicts, SkippedDate{
				Date:   schedule.FormatDate(day),
				Reason: reason,
			})
			continue
		}

		// Шаг 4: сессия наследует пакет/тренера/время/ёмкость шаблона.
		tplID := tpl.ID
		created = append(created, model.Session{
			ID:              uuid.New(),
			CompanyID:       companyID,
			TrainerID:       tpl.TrainerID,
			PackageID:       tpl.PackageID,
			TemplateID:      &tplID,
			Date:            datatypes.Date(day),
			StartTime:       tpl.StartTime,
			EndTime:         tpl.EndTime,
			MaxParticipants: tpl.MaxParticipants,
			AvailableSlots:  tpl.MaxParticipants,
			Status:          model.SessionStatusScheduled,
			ExternalKey:     newExternalKey(),
		})
	}

	// Шаг 5: пачка сохраняется одной транзакцией вместе с журналом
	// событий; уведомления уходят только после коммита.
	var notes []event.Notification
	if len(created) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.sessions.WithTx(tx).CreateBatch(ctx, created); err != nil {
				return err
			}
			evRepo := s.events.WithTx(tx)
			for i := range created {
				n := sessionNotification(model.EventTypeSessionCreated, &created[i])
				notes = append(notes, n)
				if err := evRepo.Create(ctx, notificationRow(n)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, apperr.Internal("persist generated sessions", err)
		}
		s.dispatcher.Dispatch(ctx, notes)
	}

	for i := range created {
		report.Sessions = append(report.Sessions, GeneratedSession{
			ID:          created[i].ID,
			Date:        schedule.FormatDate(time.Time(created[i].Date)),
			StartTime:   created[i].StartTime,
			EndTime:     created[i].EndTime,
			ExternalKey: created[i].ExternalKey,
		})
	}
	report.Generated = len(created)

	s.log.Info("generation finished",
		zap.String("template_id", templateID.String()),
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

// admitDate прогоняет дату через фильтры допуска. Порядок фиксирован:
// рабочий день -> исключение -> конфликт -> окно доступности.
func (s *GeneratorService) admitDate(
	ctx context.Context,
	companyID uuid.UUID,
	tpl *model.SessionTemplate,
	day time.Time,
	workingDays schedule.WeekdaySet,
	workSpan schedule.ClockSpan,
	lunchSpan, breakSpan *schedule.ClockSpan,
	tplSpan schedule.ClockSpan,
	exByDate map[string]*model.AvailabilityException,
) (string, bool) {
	// (a) день недели включён в рабочие дни тренера.
	if !workingDays.Has(day.Weekday()) {
		return reasonNotWorkingDay, false
	}

	// (b) исключение на дату: blocked снимает дату с его причиной,
	// custom_hours замещает рабочие часы на этот день.
	daySpan := workSpan
	if ex, ok := exByDate[schedule.FormatDate(day)]; ok {
		switch ex.Type {
		case model.ExceptionTypeBlocked:
			reason := reasonBlocked
			if ex.Reason != "" {
				reason = reasonBlocked + ": " + ex.Reason
			}
			return reason, false
		case model.ExceptionTypeCustomHours:
			if ex.StartTime != nil && ex.EndTime != nil {
				if span, err := schedule.ParseClockSpan(*ex.StartTime, *ex.EndTime); err == nil {
					daySpan = span
				}
			}
		}
	}

	// (c) пересечение с другой неотменённой сессией тренера на дату.
	// Чтение точечное: сессия, созданная параллельным прогоном, может
	// быть не видна — фильтр допуска, а не жёсткая гарантия.
	existing, err := s.sessions.ListBlockingByTrainerAndDate(ctx, companyID, tpl.TrainerID, day)
	if err != nil {
		s.log.Warn("conflict lookup failed", zap.Error(err))
		return reasonSessionConflict, false
	}
	for i := range existing {
		span, err := schedule.ParseClockSpan(existing[i].StartTime, existing[i].EndTime)
		if err != nil {
			continue
		}
		if tplSpan.Overlaps(span) {
			return reasonSessionConflict, false
		}
	}

	// (d) интервал шаблона внутри рабочих часов и вне перерывов.
	if !tplSpan.Within(daySpan) {
		return reasonOutsideHours, false
	}
	if lunchSpan != nil && tplSpan.Overlaps(*lunchSpan) {
		return reasonLunchOverlap, false
	}
	if breakSpan != nil && tplSpan.Overlaps(*breakSpan) {
		return reasonBreakOverlap, false
	}

	return "", true
}

// optionalSpan разбирает пару опциональных границ перерыва.
// Обе границы либо заданы, либо нет.
func optionalSpan(start, end *string) (*schedule.ClockSpan, error) {
	if start == nil && end == nil {
		return nil, nil
	}
	if start == nil || end == nil {
		return nil, schedule.ErrInvalidClockSpan
	}
	span, err := schedule.ParseClockSpan(*start, *end)
	if err != nil {
		return nil, err
	}
	return &span, nil
}

// sessionNotification собирает исходящее событие по сессии.
func sessionNotification(t model.EventType, s *model.Session) event.Notification {
	sid := s.ID
	return event.Notification{
		Type:      t,
		CompanyID: s.CompanyID,
		SessionID: &sid,
		Payload: map[string]any{
			"session_id":   s.ID.String(),
			"external_key": s.ExternalKey,
			"date":         schedule.FormatDate(time.Time(s.Date)),
			"start_time":   s.StartTime,
			"end_time":     s.EndTime,
			"trainer_id":   s.TrainerID.String(),
		},
	}
}

// notificationRow переводит исходящее событие в строку журнала.
func notificationRow(n event.Notification) *model.Event {
	payload, _ := json.Marshal(n.Payload)
	return &model.Event{
		ID:           uuid.New(),
		CompanyID:    n.CompanyID,
		EventType:    n.Type,
		SessionID:    n.SessionID,
		EnrollmentID: n.EnrollmentID,
		Payload:      payload,
	}
}
