package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusgrid/timetable-api/internal/models"
)

// OfferingRepository manages persistence for course offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// ListAll returns every offering ordered by id. Foreign keys stay raw; the
// snapshot loader dereferences them against the other catalogs.
func (r *OfferingRepository) ListAll(ctx context.Context) ([]models.Offering, error) {
	const query = `SELECT id, course_id, section_id, teacher_id, expected_size, tags, created_at, updated_at FROM offerings ORDER BY id`
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// FindByID fetches an offering by ID.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	const query = `SELECT id, course_id, section_id, teacher_id, expected_size, tags, created_at, updated_at FROM offerings WHERE id = $1`
	var offering models.Offering
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// Create inserts a new offering record.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = now
	}
	offering.UpdatedAt = now

	const query = `INSERT INTO offerings (id, course_id, section_id, teacher_id, expected_size, tags, created_at, updated_at)
		VALUES (:id, :course_id, :section_id, :teacher_id, :expected_size, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// Update modifies an existing offering record.
func (r *OfferingRepository) Update(ctx context.Context, offering *models.Offering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `UPDATE offerings SET course_id = :course_id, section_id = :section_id, teacher_id = :teacher_id, expected_size = :expected_size, tags = :tags, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("update offering: %w", err)
	}
	return nil
}
