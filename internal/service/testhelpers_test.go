package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/event"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
	"github.com/zooplan/training-platform/internal/schedule"
)

// recordingDispatcher копит события после коммита для проверок.
type recordingDispatcher struct {
	mu    sync.Mutex
	notes []event.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, notes []event.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, notes...)
}

func (d *recordingDispatcher) byType(t model.EventType) []event.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []event.Notification
	for _, n := range d.notes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Минимальная sqlite-схема для запросов и guard-обновлений.
	schemaDDL := []string{
		`CREATE TABLE companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE trainers (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE tutors (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT,
			contact_phone TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE pets (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			tutor_id TEXT NOT NULL,
			name TEXT NOT NULL,
			breed TEXT,
			note TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE packages (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			total_sessions INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE package_purchases (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			tutor_id TEXT NOT NULL,
			package_id TEXT NOT NULL,
			total_sessions INTEGER NOT NULL,
			used_sessions INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			expires_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE availability_configs (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			trainer_id TEXT NOT NULL UNIQUE,
			work_start TEXT NOT NULL,
			work_end TEXT NOT NULL,
			slot_duration_min INTEGER NOT NULL DEFAULT 60,
			lunch_start TEXT,
			lunch_end TEXT,
			break_start TEXT,
			break_end TEXT,
			working_days TEXT,
			time_zone TEXT NOT NULL DEFAULT 'UTC',
			buffer_min INTEGER NOT NULL DEFAULT 0,
			max_bookings_per_day INTEGER NOT NULL DEFAULT 0,
			advance_booking_days INTEGER NOT NULL DEFAULT 0,
			min_notice_hours INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE availability_exceptions (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			trainer_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			type TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			reason TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (trainer_id, date)
		);`,
		`CREATE TABLE session_templates (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			trainer_id TEXT NOT NULL,
			package_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			recurrence TEXT NOT NULL,
			weekdays TEXT,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			max_participants INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			trainer_id TEXT NOT NULL,
			package_id TEXT NOT NULL,
			template_id TEXT,
			date DATETIME NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			max_participants INTEGER NOT NULL DEFAULT 1,
			available_slots INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'scheduled',
			external_key TEXT NOT NULL UNIQUE,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE enrollments (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			tutor_id TEXT NOT NULL,
			pet_id TEXT NOT NULL,
			purchase_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'enrolled',
			confirmation_token TEXT NOT NULL UNIQUE,
			cancellation_token TEXT NOT NULL UNIQUE,
			cancellation_reason TEXT,
			enrolled_at DATETIME,
			confirmed_at DATETIME,
			checked_in_at DATETIME,
			cancelled_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			session_id TEXT,
			enrollment_id TEXT,
			payload TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schemaDDL {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// fixture — общий граф сущностей и собранные сервисы.
type fixture struct {
	db         *gorm.DB
	dispatcher *recordingDispatcher

	generator    *GeneratorService
	enrollments  *EnrollmentService
	availability *AvailabilityService
	sessions     *SessionService
	purchases    *PurchaseService

	sessionRepo  repository.SessionRepository
	purchaseRepo repository.PurchaseRepository

	companyID uuid.UUID
	trainerID uuid.UUID
	tutorID   uuid.UUID
	petID     uuid.UUID
	packageID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := openTestDB(t)
	log := zap.NewNop()
	disp := &recordingDispatcher{}

	trainerRepo := repository.NewGormTrainerRepository(db)
	tutorRepo := repository.NewGormTutorRepository(db)
	petRepo := repository.NewGormPetRepository(db)
	packageRepo := repository.NewGormPackageRepository(db)
	purchaseRepo := repository.NewGormPurchaseRepository(db)
	availabilityRepo := repository.NewGormAvailabilityRepository(db)
	templateRepo := repository.NewGormTemplateRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	enrollmentRepo := repository.NewGormEnrollmentRepository(db)
	eventRepo := repository.NewGormEventRepository(db)

	f := &fixture{
		db:           db,
		dispatcher:   disp,
		sessionRepo:  sessionRepo,
		purchaseRepo: purchaseRepo,

		companyID: uuid.New(),
		trainerID: uuid.New(),
		tutorID:   uuid.New(),
		petID:     uuid.New(),
		packageID: uuid.New(),
	}

	f.generator = NewGeneratorService(db, templateRepo, trainerRepo, availabilityRepo, sessionRepo, eventRepo, disp, log)
	f.enrollments = NewEnrollmentService(db, sessionRepo, enrollmentRepo, purchaseRepo, tutorRepo, petRepo, eventRepo, disp, log)
	f.availability = NewAvailabilityService(db, trainerRepo, packageRepo, availabilityRepo, templateRepo, log)
	f.sessions = NewSessionService(db, trainerRepo, packageRepo, sessionRepo, eventRepo, disp, log)
	f.purchases = NewPurchaseService(db, tutorRepo, packageRepo, purchaseRepo, log)

	mustCreate(t, db, &model.Company{ID: f.companyID, Name: "acme dogs", IsActive: true})
	mustCreate(t, db, &model.Trainer{ID: f.trainerID, CompanyID: f.companyID, DisplayName: "trainer", IsActive: true})
	mustCreate(t, db, &model.Tutor{ID: f.tutorID, CompanyID: f.companyID, DisplayName: "tutor", Email: "tutor@example.com"})
	mustCreate(t, db, &model.Pet{ID: f.petID, CompanyID: f.companyID, TutorID: f.tutorID, Name: "rex"})
	mustCreate(t, db, &model.Package{ID: f.packageID, CompanyID: f.companyID, Name: "basic 10", TotalSessions: 10, IsActive: true})

	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

// seedConfig — рабочие часы Пн-Пт 09:00-18:00 с обедом 13:00-14:00.
func (f *fixture) seedConfig(t *testing.T) *model.AvailabilityConfig {
	t.Helper()
	lunchStart, lunchEnd := "13:00", "14:00"
	cfg := &model.AvailabilityConfig{
		ID:              uuid.New(),
		CompanyID:       f.companyID,
		TrainerID:       f.trainerID,
		WorkStart:       "09:00",
		WorkEnd:         "18:00",
		SlotDurationMin: 60,
		LunchStart:      &lunchStart,
		LunchEnd:        &lunchEnd,
		WorkingDays:     datatypes.NewJSONSlice([]int{1, 2, 3, 4, 5}),
		TimeZone:        "UTC",
		IsActive:        true,
	}
	mustCreate(t, f.db, cfg)
	return cfg
}

func (f *fixture) seedTemplate(t *testing.T, recurrence model.Recurrence, weekdays []int, startDate, endDate, startTime, endTime string, capacity int) *model.SessionTemplate {
	t.Helper()
	tpl := &model.SessionTemplate{
		ID:              uuid.New(),
		CompanyID:       f.companyID,
		TrainerID:       f.trainerID,
		PackageID:       f.packageID,
		Name:            "group class",
		StartTime:       startTime,
		EndTime:         endTime,
		Recurrence:      recurrence,
		Weekdays:        datatypes.NewJSONSlice(weekdays),
		StartDate:       mustDateValue(t, startDate),
		EndDate:         mustDateValue(t, endDate),
		MaxParticipants: capacity,
		IsActive:        true,
	}
	mustCreate(t, f.db, tpl)
	return tpl
}

func (f *fixture) seedSession(t *testing.T, date, startTime, endTime string, capacity int) *model.Session {
	t.Helper()
	s := &model.Session{
		ID:              uuid.New(),
		CompanyID:       f.companyID,
		TrainerID:       f.trainerID,
		PackageID:       f.packageID,
		Date:            mustDateValue(t, date),
		StartTime:       startTime,
		EndTime:         endTime,
		MaxParticipants: capacity,
		AvailableSlots:  capacity,
		Status:          model.SessionStatusScheduled,
		ExternalKey:     newExternalKey(),
	}
	mustCreate(t, f.db, s)
	return s
}

func (f *fixture) seedPurchase(t *testing.T, total, used int, status model.PurchaseStatus) *model.PackagePurchase {
	t.Helper()
	p := &model.PackagePurchase{
		ID:            uuid.New(),
		CompanyID:     f.companyID,
		TutorID:       f.tutorID,
		PackageID:     f.packageID,
		TotalSessions: total,
		UsedSessions:  used,
		Status:        status,
	}
	mustCreate(t, f.db, p)
	return p
}

func (f *fixture) seedException(t *testing.T, date string, exType model.ExceptionType, startTime, endTime *string, reason string) *model.AvailabilityException {
	t.Helper()
	ex := &model.AvailabilityException{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		TrainerID: f.trainerID,
		Date:      mustDateValue(t, date),
		Type:      exType,
		StartTime: startTime,
		EndTime:   endTime,
		Reason:    reason,
	}
	mustCreate(t, f.db, ex)
	return ex
}

func (f *fixture) reloadSession(t *testing.T, id uuid.UUID) *model.Session {
	t.Helper()
	s, err := f.sessionRepo.GetByID(context.Background(), f.companyID, id)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	return s
}

func (f *fixture) reloadPurchase(t *testing.T, id uuid.UUID) *model.PackagePurchase {
	t.Helper()
	p, err := f.purchaseRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload purchase: %v", err)
	}
	return p
}

func (f *fixture) countEvents(t *testing.T, eventType model.EventType) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Event{}).Where("event_type = ?", eventType).Count(&n).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func mustDateValue(t *testing.T, s string) datatypes.Date {
	t.Helper()
	d, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return datatypes.Date(d)
}
