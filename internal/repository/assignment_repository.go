package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusgrid/timetable-api/internal/models"
)

// AssignmentRepository persists the generated timetable. Locked rows survive
// regeneration; everything else is replaced wholesale per run.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "a.id, a.offering_id, a.kind, a.slot_id, a.room_id, a.locked, a.created_at, a.updated_at"

// ListAll returns the entire current timetable ordered deterministically.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments a ORDER BY a.offering_id, a.kind, a.slot_id", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListLocked returns only the locked rows, the fixed points of regeneration.
func (r *AssignmentRepository) ListLocked(ctx context.Context) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments a WHERE a.locked = TRUE ORDER BY a.offering_id, a.kind, a.slot_id", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list locked assignments: %w", err)
	}
	return assignments, nil
}

// List returns assignments matching the filter along with total count.
// Teacher and section filters join through offerings, the day filter through
// time slots.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	base := "FROM assignments a JOIN offerings o ON o.id = a.offering_id JOIN time_slots s ON s.id = a.slot_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	add := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, len(args)+1))
		args = append(args, value)
	}

	if filter.OfferingID != "" {
		add("a.offering_id = $%d", filter.OfferingID)
	}
	if filter.TeacherID != "" {
		add("o.teacher_id = $%d", filter.TeacherID)
	}
	if filter.SectionID != "" {
		add("o.section_id = $%d", filter.SectionID)
	}
	if filter.RoomID != "" {
		add("a.room_id = $%d", filter.RoomID)
	}
	if filter.Kind != "" {
		add("a.kind = $%d", filter.Kind)
	}
	if filter.Day != "" {
		if day := models.ParseWeekday(strings.ToUpper(filter.Day)); day.Valid() {
			add("s.day_of_week = $%d", int(day))
		}
	}
	if filter.Locked != nil {
		add("a.locked = $%d", *filter.Locked)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.day_of_week, s.start_min, a.id LIMIT %d OFFSET %d", assignmentColumns, base, size, offset)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// FindByID fetches one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments a WHERE a.id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ReplaceUnlocked swaps the non-locked portion of the timetable for the
// freshly generated rows in one transaction. Locked rows are never touched;
// incoming rows that duplicate a locked row's id are skipped.
func (r *AssignmentRepository) ReplaceUnlocked(ctx context.Context, assignments []models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE locked = FALSE`); err != nil {
		return fmt.Errorf("clear unlocked assignments: %w", err)
	}

	const insert = `INSERT INTO assignments (id, offering_id, kind, slot_id, room_id, locked, created_at, updated_at)
		VALUES (:id, :offering_id, :kind, :slot_id, :room_id, :locked, :created_at, :updated_at)
		ON CONFLICT (id) DO NOTHING`
	now := time.Now().UTC()
	for i := range assignments {
		a := &assignments[i]
		if a.Locked {
			continue
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, a); err != nil {
			return fmt.Errorf("insert assignment %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment tx: %w", err)
	}
	return nil
}

// SetLocked toggles the lock flag and reports whether the row existed.
func (r *AssignmentRepository) SetLocked(ctx context.Context, id string, locked bool) (bool, error) {
	const query = `UPDATE assignments SET locked = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, locked, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set assignment lock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set assignment lock: %w", err)
	}
	return affected > 0, nil
}

// UpdatePlacement moves an assignment onto a new slot and room.
func (r *AssignmentRepository) UpdatePlacement(ctx context.Context, id, slotID string, roomID *string) error {
	const query = `UPDATE assignments SET slot_id = $2, room_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, slotID, roomID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update assignment placement: %w", err)
	}
	return nil
}

// Delete removes one assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
