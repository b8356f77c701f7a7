package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
	"github.com/zooplan/training-platform/internal/schedule"
)

// AvailabilityService — запись рабочих часов, исключений и шаблонов.
// Проверки времени общие с генератором: schedule.ValidateOrdered и
// тот же предикат пересечения интервалов.
type AvailabilityService struct {
	db *gorm.DB

	trainers     repository.TrainerRepository
	packages     repository.PackageRepository
	availability repository.AvailabilityRepository
	templates    repository.TemplateRepository

	log *zap.Logger
}

func NewAvailabilityService(
	db *gorm.DB,
	trainers repository.TrainerRepository,
	packages repository.PackageRepository,
	availability repository.AvailabilityRepository,
	templates repository.TemplateRepository,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		db:           db,
		trainers:     trainers,
		packages:     packages,
		availability: availability,
		templates:    templates,
		log:          log,
	}
}

// ConfigInput — рабочие часы тренера на запись.
type ConfigInput struct {
	WorkStart          string
	WorkEnd            string
	SlotDurationMin    int
	LunchStart         *string
	LunchEnd           *string
	BreakStart         *string
	BreakEnd           *string
	WorkingDays        []int
	TimeZone           string
	BufferMin          int
	MaxBookingsPerDay  int
	AdvanceBookingDays int
	MinNoticeHours     int
	IsActive           bool
}

// SaveConfig создаёт или обновляет конфигурацию тренера (одна на тренера).
func (s *AvailabilityService) SaveConfig(ctx context.Context, companyID, trainerID uuid.UUID, in ConfigInput) (*model.AvailabilityConfig, error) {
	if _, err := s.trainers.GetByID(ctx, companyID, trainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("trainer not found")
		}
		return nil, apperr.Internal("load trainer", err)
	}

	// Каждый настроенный интервал обязан иметь start < end.
	if err := schedule.ValidateOrdered(in.WorkStart, in.WorkEnd); err != nil {
		return nil, apperr.BadRequest("invalid work hours: " + err.Error())
	}
	if _, err := optionalSpan(in.LunchStart, in.LunchEnd); err != nil {
		return nil, apperr.BadRequest("invalid lunch break")
	}
	if _, err := optionalSpan(in.BreakStart, in.BreakEnd); err != nil {
		return nil, apperr.BadRequest("invalid secondary break")
	}
	if in.SlotDurationMin <= 0 {
		return nil, apperr.BadRequest("slot duration must be positive")
	}

	cfg, err := s.availability.ConfigByTrainer(ctx, companyID, trainerID)
	switch {
	case err == nil:
		// обновление существующей
	case errors.Is(err, gorm.ErrRecordNotFound):
		cfg = &model.AvailabilityConfig{
			ID:        uuid.New(),
			CompanyID: companyID,
			TrainerID: trainerID,
		}
	default:
		return nil, apperr.Internal("load availability config", err)
	}

	cfg.WorkStart = in.WorkStart
	cfg.WorkEnd = in.WorkEnd
	cfg.SlotDurationMin = in.SlotDurationMin
	cfg.LunchStart = in.LunchStart
	cfg.LunchEnd = in.LunchEnd
	cfg.BreakStart = in.BreakStart
	cfg.BreakEnd = in.BreakEnd
	cfg.WorkingDays = datatypes.NewJSONSlice(in.WorkingDays)
	cfg.BufferMin = in.BufferMin
	cfg.MaxBookingsPerDay = in.MaxBookingsPerDay
	cfg.AdvanceBookingDays = in.AdvanceBookingDays
	cfg.MinNoticeHours = in.MinNoticeHours
	cfg.IsActive = in.IsActive
	if in.TimeZone != "" {
		cfg.TimeZone = in.TimeZone
	}

	if err := s.availability.SaveConfig(ctx, cfg); err != nil {
		return nil, apperr.Internal("save availability config", err)
	}
	return cfg, nil
}

// ExceptionInput — точечное исключение на дату.
type ExceptionInput struct {
	Date      string
	Type      model.ExceptionType
	StartTime *string
	EndTime   *string
	Reason    string
}

// CreateException добавляет исключение; дубль на пару (trainer, date) —
// Conflict. Проверка дубля выполняется в той же транзакции, что и
// вставка: до транзакции она оставила бы окно гонки.
func (s *AvailabilityService) CreateException(ctx context.Context, companyID, trainerID uuid.UUID, in ExceptionInput) (*model.AvailabilityException, error) {
	if _, err := s.trainers.GetByID(ctx, companyID, trainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("trainer not found")
		}
		return nil, apperr.Internal("load trainer", err)
	}

	day, err := schedule.ParseDate(in.Date)
	if err != nil {
		return nil, apperr.BadRequest("invalid date")
	}

	switch in.Type {
	case model.ExceptionTypeBlocked:
		// времена не требуются
	case model.ExceptionTypeCustomHours:
		if in.StartTime == nil || in.EndTime == nil {
			return nil, apperr.BadRequest("custom hours require start and end time")
		}
		if err := schedule.ValidateOrdered(*in.StartTime, *in.EndTime); err != nil {
			return nil, apperr.BadRequest("invalid custom hours: " + err.Error())
		}
	default:
		return nil, apperr.BadRequest("unknown exception type")
	}

	ex := &model.AvailabilityException{
		ID:        uuid.New(),
		CompanyID: companyID,
		TrainerID: trainerID,
		Date:      datatypes.Date(day),
		Type:      in.Type,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Reason:    in.Reason,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.availability.WithTx(tx)
		exists, err := repo.ExceptionExists(ctx, companyID, trainerID, day)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("exception already exists for this date")
		}
		return repo.CreateException(ctx, ex)
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Internal("create exception", err)
	}
	return ex, nil
}

// TemplateInput — шаблон повторяющегося занятия на запись.
type TemplateInput struct {
	TrainerID       uuid.UUID
	PackageID       uuid.UUID
	Name            string
	StartTime       string
	EndTime         string
	Recurrence      model.Recurrence
	Weekdays        []int
	StartDate       string
	EndDate         string
	MaxParticipants int
}

// CreateTemplate валидирует и сохраняет шаблон.
// Набор дней недели обязателен ровно для weekly.
func (s *AvailabilityService) CreateTemplate(ctx context.Context, companyID uuid.UUID, in TemplateInput) (*model.SessionTemplate, error) {
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

	if err := schedule.ValidateOrdered(in.StartTime, in.EndTime); err != nil {
		return nil, apperr.BadRequest("invalid time range: " + err.Error())
	}

	switch in.Recurrence {
	case model.RecurrenceOnce, model.RecurrenceDaily, model.RecurrenceMonthly:
		if len(in.Weekdays) > 0 {
			return nil, apperr.BadRequest("weekday set is only valid for weekly recurrence")
		}
	case model.RecurrenceWeekly:
		if schedule.NewWeekdaySet(in.Weekdays).Empty() {
			return nil, apperr.BadRequest("weekly template requires a weekday set")
		}
	default:
		return nil, apperr.BadRequest("unknown recurrence")
	}

	start, err := schedule.ParseDate(in.StartDate)
	if err != nil {
		return nil, apperr.BadRequest("invalid start date")
	}
	end, err := schedule.ParseDate(in.EndDate)
	if err != nil {
		return nil, apperr.BadRequest("invalid end date")
	}
	if end.Before(start) {
		return nil, apperr.BadRequest("end date before start date")
	}
	if in.MaxParticipants <= 0 {
		return nil, apperr.BadRequest("max participants must be positive")
	}

	tpl := &model.SessionTemplate{
		ID:              uuid.New(),
		CompanyID:       companyID,
		TrainerID:       in.TrainerID,
		PackageID:       in.PackageID,
		Name:            in.Name,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Recurrence:      in.Recurrence,
		Weekdays:        datatypes.NewJSONSlice(in.Weekdays),
		StartDate:       datatypes.Date(start),
		EndDate:         datatypes.Date(end),
		MaxParticipants: in.MaxParticipants,
		IsActive:        true,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, apperr.Internal("create template", err)
	}

	s.log.Info("template created",
		zap.String("template_id", tpl.ID.String()),
		zap.String("recurrence", string(tpl.Recurrence)),
	)

	return tpl, nil
}

// ListTemplates — шаблоны тренера, свежие первыми.
func (s *AvailabilityService) ListTemplates(ctx context.Context, companyID, trainerID uuid.UUID) ([]model.SessionTemplate, error) {
	if _, err := s.trainers.GetByID(ctx, companyID, trainerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("trainer not found")
		}
		return nil, apperr.Internal("load trainer", err)
	}
	list, err := s.templates.ListByTrainer(ctx, companyID, trainerID)
	if err != nil {
		return nil, apperr.Internal("list templates", err)
	}
	return list, nil
}
