package service

import (
	"context"
	"fmt"

	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

type slotCatalog interface {
	ListAll(ctx context.Context) ([]models.TimeSlot, error)
}

type teacherCatalog interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type roomCatalog interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type courseCatalog interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type sectionCatalog interface {
	ListAll(ctx context.Context) ([]models.Section, error)
}

type offeringCatalog interface {
	ListAll(ctx context.Context) ([]models.Offering, error)
}

type availabilityLoader interface {
	LoadAll(ctx context.Context) (models.AvailabilitySet, error)
}

type assignmentStore interface {
	ListAll(ctx context.Context) ([]models.Assignment, error)
	ListLocked(ctx context.Context) ([]models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ReplaceUnlocked(ctx context.Context, assignments []models.Assignment) error
	SetLocked(ctx context.Context, id string, locked bool) (bool, error)
	UpdatePlacement(ctx context.Context, id, slotID string, roomID *string) error
	Delete(ctx context.Context, id string) error
}

// SnapshotLoader fetches the full entity universe once and resolves offering
// foreign keys. The engine consumes only the resolved form.
type SnapshotLoader struct {
	slots        slotCatalog
	teachers     teacherCatalog
	rooms        roomCatalog
	courses      courseCatalog
	sections     sectionCatalog
	offerings    offeringCatalog
	availability availabilityLoader
}

// NewSnapshotLoader wires the catalogs the loader reads from.
func NewSnapshotLoader(
	slots slotCatalog,
	teachers teacherCatalog,
	rooms roomCatalog,
	courses courseCatalog,
	sections sectionCatalog,
	offerings offeringCatalog,
	availability availabilityLoader,
) *SnapshotLoader {
	return &SnapshotLoader{
		slots:        slots,
		teachers:     teachers,
		rooms:        rooms,
		courses:      courses,
		sections:     sections,
		offerings:    offerings,
		availability: availability,
	}
}

// Load builds the in-memory scheduling snapshot. An offering referencing an
// unknown course or section fails the whole load; a missing or inactive
// teacher leaves the offering teacherless, which the engine reports as a
// per-unit warning instead.
func (l *SnapshotLoader) Load(ctx context.Context) (scheduler.Input, error) {
	var in scheduler.Input

	slots, err := l.slots.ListAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load slots: %w", err)
	}
	teachers, err := l.teachers.ListActive(ctx)
	if err != nil {
		return in, fmt.Errorf("load teachers: %w", err)
	}
	rooms, err := l.rooms.ListAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load rooms: %w", err)
	}
	courses, err := l.courses.ListAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load courses: %w", err)
	}
	sections, err := l.sections.ListAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load sections: %w", err)
	}
	offerings, err := l.offerings.ListAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load offerings: %w", err)
	}
	availability, err := l.availability.LoadAll(ctx)
	if err != nil {
		return in, fmt.Errorf("load availability: %w", err)
	}

	courseByID := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}
	sectionByID := make(map[string]models.Section, len(sections))
	for _, s := range sections {
		sectionByID[s.ID] = s
	}
	teacherByID := make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		teacherByID[t.ID] = t
	}

	resolved := make([]models.ResolvedOffering, 0, len(offerings))
	for _, off := range offerings {
		course, ok := courseByID[off.CourseID]
		if !ok {
			return in, appErrors.Clone(appErrors.ErrSetup, fmt.Sprintf("offering %s references unknown course %s", off.ID, off.CourseID))
		}
		section, ok := sectionByID[off.SectionID]
		if !ok {
			return in, appErrors.Clone(appErrors.ErrSetup, fmt.Sprintf("offering %s references unknown section %s", off.ID, off.SectionID))
		}
		ro := models.ResolvedOffering{Offering: off, Course: course, Section: section}
		if off.TeacherID != nil {
			if t, ok := teacherByID[*off.TeacherID]; ok {
				teacher := t
				ro.Teacher = &teacher
			}
		}
		resolved = append(resolved, ro)
	}

	in = scheduler.Input{
		Teachers:     teachers,
		Rooms:        rooms,
		Slots:        slots,
		Offerings:    resolved,
		Availability: availability,
	}
	return in, nil
}
