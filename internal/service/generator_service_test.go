package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/schedule"
)

func mustGenerate(t *testing.T, f *fixture, templateID uuid.UUID, from, to string) *GenerationReport {
	t.Helper()
	report, err := f.generator.Generate(context.Background(), f.companyID,
		templateID, mustDay(t, from), mustDay(t, to))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return report
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return parsed
}

func skipReason(report *GenerationReport, date string) (string, bool) {
	for _, c := range report.Conflicts {
		if c.Date == date {
			return c.Reason, true
		}
	}
	return "", false
}

//
// Тесты генерации по шаблону
//

func TestGeneratorService_WeeklyWithBlockAndConflict(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t)

	// Пн/Ср с 2025-01-06 (понедельник) по 2025-01-15: 06, 08, 13, 15.
	tpl := f.seedTemplate(t, model.RecurrenceWeekly, []int{1, 3},
		"2025-01-06", "2025-01-15", "10:00", "11:00", 5)

	// 08-е заблокировано исключением, на 13-е уже есть пересекающаяся сессия.
	f.seedException(t, "2025-01-08", model.ExceptionTypeBlocked, nil, nil, "vacation")
	f.seedSession(t, "2025-01-13", "10:30", "11:30", 3)

	report := mustGenerate(t, f, tpl.ID, "2025-01-06", "2025-01-15")

	if report.Generated != 2 {
		t.Fatalf("Generated = %d, want 2 (report: %+v)", report.Generated, report)
	}
	if report.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", report.Skipped)
	}

	if reason, ok := skipReason(report, "2025-01-08"); !ok || !strings.Contains(reason, "blocked") || !strings.Contains(reason, "vacation") {
		t.Fatalf("2025-01-08 reason = %q, want blocked with stored reason", reason)
	}
	if reason, ok := skipReason(report, "2025-01-13"); !ok || !strings.Contains(reason, "conflict") {
		t.Fatalf("2025-01-13 reason = %q, want conflict", reason)
	}

	// Сессии реально записаны, с ёмкостью шаблона и ссылкой на него.
	var stored []model.Session
	if err := f.db.Where("template_id = ?", tpl.ID).Order("date ASC").Find(&stored).Error; err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored sessions = %d, want 2", len(stored))
	}
	for _, s := range stored {
		if s.Status != model.SessionStatusScheduled {
			t.Fatalf("status = %q, want scheduled", s.Status)
		}
		if s.AvailableSlots != 5 || s.MaxParticipants != 5 {
			t.Fatalf("capacity = %d/%d, want 5/5", s.AvailableSlots, s.MaxParticipants)
		}
		if s.ExternalKey == "" {
			t.Fatalf("external key must be issued at creation")
		}
	}

	// По строке журнала и одному уведомлению на каждую созданную сессию.
	if n := f.countEvents(t, model.EventTypeSessionCreated); n != 2 {
		t.Fatalf("session_created events = %d, want 2", n)
	}
	if n := len(f.dispatcher.byType(model.EventTypeSessionCreated)); n != 2 {
		t.Fatalf("dispatched notifications = %d, want 2", n)
	}
}

func TestGeneratorService_NotWorkingDaySkipped(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t) // Пн-Пт

	// Ежедневный шаблон через выходные: суббота и воскресенье отбраковываются.
	tpl := f.seedTemplate(t, model.RecurrenceDaily, nil,
		"2025-01-10", "2025-01-13", "10:00", "11:00", 1)

	report := mustGenerate(t, f, tpl.ID, "2025-01-10", "2025-01-13")

	// 10 (пт) и 13 (пн) проходят, 11 (сб) и 12 (вс) — нет.
	if report.Generated != 2 || report.Skipped != 2 {
		t.Fatalf("generated/skipped = %d/%d, want 2/2", report.Generated, report.Skipped)
	}
	for _, date := range []string{"2025-01-11", "2025-01-12"} {
		if reason, ok := skipReason(report, date); !ok || reason != "not a working day" {
			t.Fatalf("%s reason = %q, want %q", date, reason, "not a working day")
		}
	}
}

func TestGeneratorService_OutsideHoursAndLunch(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t) // 09:00-18:00, обед 13:00-14:00

	// 2025-01-06 — понедельник, рабочий день.
	early := f.seedTemplate(t, model.RecurrenceOnce, nil,
		"2025-01-06", "2025-01-06", "08:00", "09:30", 1)
	report := mustGenerate(t, f, early.ID, "2025-01-06", "2025-01-06")
	if reason, ok := skipReason(report, "2025-01-06"); !ok || reason != "outside trainer work hours" {
		t.Fatalf("early template reason = %q", reason)
	}

	lunch := f.seedTemplate(t, model.RecurrenceOnce, nil,
		"2025-01-06", "2025-01-06", "13:30", "14:30", 1)
	report = mustGenerate(t, f, lunch.ID, "2025-01-06", "2025-01-06")
	if reason, ok := skipReason(report, "2025-01-06"); !ok || reason != "overlaps lunch break" {
		t.Fatalf("lunch template reason = %q", reason)
	}

	// Касание границы обеда — не пересечение.
	touching := f.seedTemplate(t, model.RecurrenceOnce, nil,
		"2025-01-06", "2025-01-06", "14:00", "15:00", 1)
	report = mustGenerate(t, f, touching.ID, "2025-01-06", "2025-01-06")
	if report.Generated != 1 {
		t.Fatalf("touching lunch boundary must generate, report: %+v", report)
	}
}

func TestGeneratorService_CustomHoursException(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t) // 09:00-18:00

	// Вечерний шаблон вне обычных часов; на 2025-01-07 у тренера
	// особые часы 18:00-21:00.
	tpl := f.seedTemplate(t, model.RecurrenceDaily, nil,
		"2025-01-06", "2025-01-07", "19:00", "20:00", 1)
	start, end := "18:00", "21:00"
	f.seedException(t, "2025-01-07", model.ExceptionTypeCustomHours, &start, &end, "")

	report := mustGenerate(t, f, tpl.ID, "2025-01-06", "2025-01-07")

	if report.Generated != 1 {
		t.Fatalf("Generated = %d, want 1", report.Generated)
	}
	if reason, ok := skipReason(report, "2025-01-06"); !ok || reason != "outside trainer work hours" {
		t.Fatalf("2025-01-06 reason = %q", reason)
	}
	if report.Sessions[0].Date != "2025-01-07" {
		t.Fatalf("generated date = %s, want 2025-01-07", report.Sessions[0].Date)
	}
}

func TestGeneratorService_RangeClampedToTemplateWindow(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t)

	tpl := f.seedTemplate(t, model.RecurrenceDaily, nil,
		"2025-01-06", "2025-01-07", "10:00", "11:00", 1)

	// Запрошенный интервал шире окна шаблона: генерация обрезается к окну.
	report := mustGenerate(t, f, tpl.ID, "2025-01-01", "2025-01-31")
	if report.Generated != 2 {
		t.Fatalf("Generated = %d, want 2", report.Generated)
	}

	// Интервал вне окна — пустой успешный отчёт.
	empty := mustGenerate(t, f, tpl.ID, "2025-02-01", "2025-02-28")
	if empty.Generated != 0 || empty.Skipped != 0 {
		t.Fatalf("expected empty report, got %+v", empty)
	}
}

func TestGeneratorService_Preconditions(t *testing.T) {
	f := newFixture(t)

	// Неизвестный шаблон.
	_, err := f.generator.Generate(context.Background(), f.companyID,
		uuid.New(), mustDay(t, "2025-01-06"), mustDay(t, "2025-01-07"))
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("unknown template: expected not_found, got %v", err)
	}

	// Нет активной конфигурации доступности.
	tpl := f.seedTemplate(t, model.RecurrenceDaily, nil,
		"2025-01-06", "2025-01-07", "10:00", "11:00", 1)
	_, err = f.generator.Generate(context.Background(), f.companyID,
		tpl.ID, mustDay(t, "2025-01-06"), mustDay(t, "2025-01-07"))
	if apperr.CodeOf(err) != apperr.CodeBadRequest {
		t.Fatalf("missing config: expected bad_request, got %v", err)
	}

	// Неактивный шаблон.
	f.seedConfig(t)
	if err := f.db.Model(tpl).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate template: %v", err)
	}
	_, err = f.generator.Generate(context.Background(), f.companyID,
		tpl.ID, mustDay(t, "2025-01-06"), mustDay(t, "2025-01-07"))
	if apperr.CodeOf(err) != apperr.CodeBadRequest {
		t.Fatalf("inactive template: expected bad_request, got %v", err)
	}

	// Шаблон чужой компании не виден.
	fresh := f.seedTemplate(t, model.RecurrenceDaily, nil,
		"2025-01-06", "2025-01-07", "11:00", "12:00", 1)
	_, err = f.generator.Generate(context.Background(), uuid.New(),
		fresh.ID, mustDay(t, "2025-01-06"), mustDay(t, "2025-01-07"))
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("foreign tenant: expected not_found, got %v", err)
	}
}

func TestGeneratorService_WeeklyWithoutWeekdaysRejected(t *testing.T) {
	f := newFixture(t)
	f.seedConfig(t)

	tpl := f.seedTemplate(t, model.RecurrenceWeekly, nil,
		"2025-01-06", "2025-01-15", "10:00", "11:00", 1)

	_, err := f.generator.Generate(context.Background(), f.companyID,
		tpl.ID, mustDay(t, "2025-01-06"), mustDay(t, "2025-01-15"))
	if apperr.CodeOf(err) != apperr.CodeBadRequest {
		t.Fatalf("expected bad_request for empty weekday set, got %v", err)
	}
}
