package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/event"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
	"github.com/zooplan/training-platform/internal/schedule"
)

// TokenActionResult — ответ публичных операций по токену.
// Токен — единственное полномочие, поэтому наружу уходят только данные
// самой записи, ничего tenant-масштабного.
type TokenActionResult struct {
	EnrollmentID uuid.UUID              `json:"enrollment_id"`
	Status       model.EnrollmentStatus `json:"status"`
	ConfirmedAt  *time.Time             `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
}

// EnrollmentService — жизненный цикл записи и леджер ёмкости/кредитов.
// Ёмкость и кредит резервируются пессимистично при создании записи;
// подтверждение счётчиков не трогает.
type EnrollmentService struct {
	db *gorm.DB

	sessions    repository.SessionRepository
	enrollments repository.EnrollmentRepository
	purchases   repository.PurchaseRepository
	tutors      repository.TutorRepository
	pets        repository.PetRepository
	events      repository.EventRepository

	dispatcher event.Dispatcher
	log        *zap.Logger
}

func NewEnrollmentService(
	db *gorm.DB,
	sessions repository.SessionRepository,
	enrollments repository.EnrollmentRepository,
	purchases repository.PurchaseRepository,
	tutors repository.TutorRepository,
	pets repository.PetRepository,
	events repository.EventRepository,
	dispatcher event.Dispatcher,
	log *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		db:          db,
		sessions:    sessions,
		enrollments: enrollments,
		purchases:   purchases,
		tutors:      tutors,
		pets:        pets,
		events:      events,
		dispatcher:  dispatcher,
		log:         log,
	}
}

// Enroll записывает питомца клиента на сессию.
// Слот, кредит и строка записи меняются в одной транзакции: либо все
// три эффекта, либо ни одного. Счётчики обновляются guard-условиями,
// поэтому последний слот или кредит не может достаться двоим.
func (s *EnrollmentService) Enroll(
	ctx context.Context,
	companyID, sessionID, tutorID, petID uuid.UUID,
) (*model.Enrollment, error) {
	sess, err := s.sessions.GetByID(ctx, companyID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session not found")
		}
		return nil, apperr.Internal("load session", err)
	}
	if sess.AvailableSlots <= 0 {
		return nil, apperr.BadRequest("session has no available slots")
	}

	tutor, err := s.tutors.GetByID(ctx, companyID, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tutor not found")
		}
		return nil, apperr.Internal("load tutor", err)
	}
	pet, err := s.pets.GetByID(ctx, companyID, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pet not found")
		}
		return nil, apperr.Internal("load pet", err)
	}
	if pet.TutorID != tutor.ID {
		return nil, apperr.BadRequest("pet does not belong to tutor")
	}

	purchase, err := s.purchases.ActiveByTutorAndPackage(ctx, companyID, tutorID, sess.PackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.BadRequest("tutor has no active package purchase")
		}
		return nil, apperr.Internal("load purchase", err)
	}
	if purchase.UsedSessions >= purchase.TotalSessions {
		return nil, apperr.BadRequest("package credit exhausted")
	}

	enr := &model.Enrollment{
		ID:                uuid.New(),
		CompanyID:         companyID,
		SessionID:         sess.ID,
		TutorID:           tutor.ID,
		PetID:             pet.ID,
		PurchaseID:        purchase.ID,
		Status:            model.EnrollmentStatusEnrolled,
		ConfirmationToken: newToken(),
		CancellationToken: newToken(),
		EnrolledAt:        time.Now().UTC(),
	}

	note := enrollmentNotification(model.EventTypeEnrollmentCreated, enr, sess, map[string]any{
		"tutor_name":         tutor.DisplayName,
		"tutor_email":        tutor.Email,
		"pet_name":           pet.Name,
		"confirmation_token": enr.ConfirmationToken,
		"cancellation_token": enr.CancellationToken,
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrRepo := s.enrollments.WithTx(tx)

		// Повторная проверка дубля внутри транзакции: проверка до неё
		// оставляет окно между check и write.
		exists, err := enrRepo.ActiveExistsForPet(ctx, sess.ID, pet.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("pet already has an active enrollment for this session")
		}

		ok, err := s.sessions.WithTx(tx).ReserveSlot(ctx, sess.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequest("session has no available slots")
		}

		ok, err = s.purchases.WithTx(tx).ConsumeCredit(ctx, purchase.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequest("package credit exhausted")
		}

		if err := enrRepo.Create(ctx, enr); err != nil {
			return err
		}

		return s.events.WithTx(tx).Create(ctx, notificationRow(note))
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Internal("enroll", err)
	}

	s.dispatcher.Dispatch(ctx, []event.Notification{note})

	s.log.Info("enrollment created",
		zap.String("enrollment_id", enr.ID.String()),
		zap.String("session_id", sess.ID.String()),
	)

	return enr, nil
}

// Cancel — аутентифицированная отмена по идентификатору в пределах компании.
func (s *EnrollmentService) Cancel(ctx context.Context, companyID, enrollmentID uuid.UUID, reason string) (*model.Enrollment, error) {
	enr, err := s.enrollments.GetByID(ctx, companyID, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment not found")
		}
		return nil, apperr.Internal("load enrollment", err)
	}
	return s.cancel(ctx, enr, reason)
}

// CancelByToken — публичная отмена по одноразовому токену.
// Tenant-проверки нет: токен сам является полномочием.
func (s *EnrollmentService) CancelByToken(ctx context.Context, token, reason string) (*TokenActionResult, error) {
	enr, err := s.enrollments.GetByCancellationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment not found")
		}
		return nil, apperr.Internal("load enrollment", err)
	}
	cancelled, err := s.cancel(ctx, enr, reason)
	if err != nil {
		return nil, err
	}
	return &TokenActionResult{
		EnrollmentID: cancelled.ID,
		Status:       cancelled.Status,
		CancelledAt:  cancelled.CancelledAt,
	}, nil
}

// cancel — единственная точка отмены для обеих поверхностей вызова.
// Точно обращает эффекты создания: возвращает кредит (пол 0, used ->
// active при спуске ниже total), возвращает слот (потолок
// max_participants) и терминально переводит запись в cancelled.
func (s *EnrollmentService) cancel(ctx context.Context, enr *model.Enrollment, reason string) (*model.Enrollment, error) {
	if enr.Status == model.EnrollmentStatusCancelled {
		return nil, apperr.BadRequest("enrollment already cancelled")
	}
	if enr.IsTerminal() {
		return nil, apperr.BadRequest("enrollment is in a terminal state")
	}

	now := time.Now().UTC()

	sess, err := s.sessions.GetByID(ctx, enr.CompanyID, enr.SessionID)
	if err != nil {
		return nil, apperr.Internal("load session", err)
	}

	note := enrollmentNotification(model.EventTypeEnrollmentCancelled, enr, sess, map[string]any{
		"reason": reason,
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Сначала guard-переход статуса: конкурентный дубль отмены
		// не пройдёт guard и не обратит счётчики второй раз.
		ok, err := s.enrollments.WithTx(tx).MarkCancelled(ctx, enr.ID, now, reason)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequest("enrollment already cancelled")
		}
		if _, err := s.purchases.WithTx(tx).RefundCredit(ctx, enr.PurchaseID); err != nil {
			return err
		}
		if _, err := s.sessions.WithTx(tx).ReleaseSlot(ctx, enr.SessionID); err != nil {
			return err
		}
		return s.events.WithTx(tx).Create(ctx, notificationRow(note))
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Internal("cancel enrollment", err)
	}

	s.dispatcher.Dispatch(ctx, []event.Notification{note})

	enr.Status = model.EnrollmentStatusCancelled
	enr.CancelledAt = &now
	enr.CancellationReason = reason

	s.log.Info("enrollment cancelled", zap.String("enrollment_id", enr.ID.String()))

	return enr, nil
}

// ConfirmByToken — публичное подтверждение по одноразовому токену.
// Счётчики не меняются: ёмкость зарезервирована при создании записи,
// подтверждение — только квитанция.
func (s *EnrollmentService) ConfirmByToken(ctx context.Context, token string) (*TokenActionResult, error) {
	enr, err := s.enrollments.GetByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment not found")
		}
		return nil, apperr.Internal("load enrollment", err)
	}

	if enr.Status == model.EnrollmentStatusCancelled {
		return nil, apperr.BadRequest("enrollment is cancelled")
	}
	if enr.Status == model.EnrollmentStatusConfirmed {
		return nil, apperr.BadRequest("enrollment already confirmed")
	}

	now := time.Now().UTC()

	sess, err := s.sessions.GetByID(ctx, enr.CompanyID, enr.SessionID)
	if err != nil {
		return nil, apperr.Internal("load session", err)
	}

	note := enrollmentNotification(model.EventTypeEnrollmentConfirmed, enr, sess, nil)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.enrollments.WithTx(tx).MarkConfirmed(ctx, enr.ID, now); err != nil {
			return err
		}
		return s.events.WithTx(tx).Create(ctx, notificationRow(note))
	})
	if err != nil {
		return nil, apperr.Internal("confirm enrollment", err)
	}

	s.dispatcher.Dispatch(ctx, []event.Notification{note})

	return &TokenActionResult{
		EnrollmentID: enr.ID,
		Status:       model.EnrollmentStatusConfirmed,
		ConfirmedAt:  &now,
	}, nil
}

// enrollmentNotification собирает исходящее событие по записи.
func enrollmentNotification(t model.EventType, e *model.Enrollment, s *model.Session, extra map[string]any) event.Notification {
	eid, sid := e.ID, e.SessionID
	payload := map[string]any{
		"enrollment_id": e.ID.String(),
		"session_id":    e.SessionID.String(),
		"date":          schedule.FormatDate(time.Time(s.Date)),
		"start_time":    s.StartTime,
		"end_time":      s.EndTime,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return event.Notification{
		Type:         t,
		CompanyID:    e.CompanyID,
		SessionID:    &sid,
		EnrollmentID: &eid,
		Payload:      payload,
	}
}
