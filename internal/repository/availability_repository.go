package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusgrid/timetable-api/internal/models"
)

// AvailabilityRepository persists explicit teacher availability rows. A
// teacher with no rows at all is implicitly available everywhere.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// LoadAll returns the full availability relation keyed by teacher then slot.
func (r *AvailabilityRepository) LoadAll(ctx context.Context) (models.AvailabilitySet, error) {
	const query = `SELECT id, teacher_id, slot_id, created_at FROM teacher_availability ORDER BY teacher_id, slot_id`
	var rows []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	set := models.AvailabilitySet{}
	for _, row := range rows {
		slots, ok := set[row.TeacherID]
		if !ok {
			slots = map[string]bool{}
			set[row.TeacherID] = slots
		}
		slots[row.SlotID] = true
	}
	return set, nil
}

// ReplaceForTeacher swaps a teacher's availability rows for the given slot
// set. An empty slice removes the restriction entirely.
func (r *AvailabilityRepository) ReplaceForTeacher(ctx context.Context, teacherID string, slotIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_availability WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear availability for %s: %w", teacherID, err)
	}

	const insert = `INSERT INTO teacher_availability (id, teacher_id, slot_id, created_at) VALUES ($1, $2, $3, $4)`
	now := time.Now().UTC()
	for _, slotID := range slotIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), teacherID, slotID, now); err != nil {
			return fmt.Errorf("insert availability %s/%s: %w", teacherID, slotID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability tx: %w", err)
	}
	return nil
}
