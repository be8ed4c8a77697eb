package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
)

// candidateSlack bounds the pre-filter for non-recurring rows: an
// appointment starting earlier than this before the window cannot still
// reach into it. Durations are minutes, a day of slack is generous.
const candidateSlack = 24 * time.Hour

// GormStore backs the engine's collaborator interfaces with postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Candidates(ctx context.Context, businessID uint, from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND status <> ?", businessID, models.StatusCancelled).
		Where("is_recurring = ? OR (start_at < ? AND start_at > ?)", true, to, from.Add(-candidateSlack)).
		Find(&appts).Error
	return appts, err
}

func (s *GormStore) MarkDone(ctx context.Context, id uint, completedAt time.Time) error {
	// Guarded on status so concurrent expansions cannot double-promote.
	return s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":              models.StatusDone,
			"started_at":          gorm.Expr("start_at"),
			"completed_at":        completedAt,
			"actual_duration_min": gorm.Expr("duration_min"),
		}).Error
}

func (s *GormStore) ListExceptions(ctx context.Context, businessID uint) ([]models.AppointmentException, error) {
	var excs []models.AppointmentException
	err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Find(&excs).Error
	return excs, err
}

func (s *GormStore) HasVisit(ctx context.Context, appointmentID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ClientHistory{}).
		Where("appointment_id = ? AND kind = ?", appointmentID, models.HistoryVisitCompleted).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) RecordVisitCompleted(ctx context.Context, businessID, clientID, appointmentID uint, occurredAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.ClientHistory{
			ID:            uuid.New().String(),
			BusinessID:    businessID,
			ClientID:      clientID,
			AppointmentID: appointmentID,
			OccurredAt:    occurredAt,
			Kind:          models.HistoryVisitCompleted,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Client{}).Where("id = ?", clientID).
			UpdateColumn("visit_count", gorm.Expr("visit_count + 1")).Error
	})
}

func (s *GormStore) RecordCancellation(ctx context.Context, businessID, clientID, appointmentID uint, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.ClientHistory{
			ID:            uuid.New().String(),
			BusinessID:    businessID,
			ClientID:      clientID,
			AppointmentID: appointmentID,
			OccurredAt:    time.Now(),
			Kind:          models.HistoryCancelled,
			Reason:        reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Client{}).Where("id = ?", clientID).
			UpdateColumn("cancel_count", gorm.Expr("cancel_count + 1")).Error
	})
}
