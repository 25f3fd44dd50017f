package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

type fakeSlots struct{ items []models.TimeSlot }

func (f *fakeSlots) ListAll(context.Context) ([]models.TimeSlot, error) { return f.items, nil }

type fakeTeachers struct{ items []models.Teacher }

func (f *fakeTeachers) ListActive(context.Context) ([]models.Teacher, error) { return f.items, nil }

type fakeRooms struct{ items []models.Room }

func (f *fakeRooms) ListAll(context.Context) ([]models.Room, error) { return f.items, nil }

type fakeCourses struct{ items []models.Course }

func (f *fakeCourses) ListAll(context.Context) ([]models.Course, error) { return f.items, nil }

type fakeSections struct{ items []models.Section }

func (f *fakeSections) ListAll(context.Context) ([]models.Section, error) { return f.items, nil }

type fakeOfferings struct{ items []models.Offering }

func (f *fakeOfferings) ListAll(context.Context) ([]models.Offering, error) { return f.items, nil }

type fakeAvailability struct{ set models.AvailabilitySet }

func (f *fakeAvailability) LoadAll(context.Context) (models.AvailabilitySet, error) {
	if f.set == nil {
		return models.AvailabilitySet{}, nil
	}
	return f.set, nil
}

type fakeAssignmentStore struct {
	items        []models.Assignment
	replaceCalls int
}

func (f *fakeAssignmentStore) ListAll(context.Context) ([]models.Assignment, error) {
	return f.items, nil
}

func (f *fakeAssignmentStore) ListLocked(context.Context) ([]models.Assignment, error) {
	var locked []models.Assignment
	for _, a := range f.items {
		if a.Locked {
			locked = append(locked, a)
		}
	}
	return locked, nil
}

func (f *fakeAssignmentStore) List(_ context.Context, _ models.AssignmentFilter) ([]models.Assignment, int, error) {
	return f.items, len(f.items), nil
}

func (f *fakeAssignmentStore) FindByID(_ context.Context, id string) (*models.Assignment, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			a := f.items[i]
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentStore) ReplaceUnlocked(_ context.Context, assignments []models.Assignment) error {
	f.replaceCalls++
	var kept []models.Assignment
	for _, a := range f.items {
		if a.Locked {
			kept = append(kept, a)
		}
	}
	for _, a := range assignments {
		if !a.Locked {
			kept = append(kept, a)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeAssignmentStore) SetLocked(_ context.Context, id string, locked bool) (bool, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Locked = locked
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignmentStore) UpdatePlacement(_ context.Context, id, slotID string, roomID *string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].SlotID = slotID
			f.items[i].RoomID = roomID
		}
	}
	return nil
}

func (f *fakeAssignmentStore) Delete(_ context.Context, id string) error {
	var kept []models.Assignment
	for _, a := range f.items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.items = kept
	return nil
}

type fakeCacheRepo struct {
	entries      map[string][]byte
	invalidated  []string
	setCallCount int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	f.setCallCount++
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

// fixture: a two-day hourly grid, one classroom, one offering needing a
// single lecture.
type serviceFixture struct {
	snapshot *SnapshotLoader
	store    *fakeAssignmentStore
	cache    *CacheService
	repo     *fakeCacheRepo
}

func newServiceFixture(t *testing.T, offerings []models.Offering, courses []models.Course) *serviceFixture {
	t.Helper()

	var slots []models.TimeSlot
	for day := 1; day <= 2; day++ {
		for hour := 8; hour <= 12; hour++ {
			slots = append(slots, models.TimeSlot{
				ID:       slotID(day, hour),
				Day:      models.Weekday(day),
				StartMin: hour * 60,
				EndMin:   (hour + 1) * 60,
			})
		}
	}

	teacher := models.Teacher{ID: "t-1", FullName: "Dr. Grid", Active: true, MaxPerDay: 6, MaxPerWeek: 30}
	sections := []models.Section{{ID: "s-1", Program: "CS", Year: 2, Label: "A"}}
	rooms := []models.Room{{ID: "r-1", Name: "C-101", Capacity: 60, Kind: models.RoomClassroom}}

	store := &fakeAssignmentStore{}
	repo := newFakeCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	snapshot := NewSnapshotLoader(
		&fakeSlots{items: slots},
		&fakeTeachers{items: []models.Teacher{teacher}},
		&fakeRooms{items: rooms},
		&fakeCourses{items: courses},
		&fakeSections{items: sections},
		&fakeOfferings{items: offerings},
		&fakeAvailability{},
	)
	return &serviceFixture{snapshot: snapshot, store: store, cache: cache, repo: repo}
}

func slotID(day, hour int) string {
	return fmt.Sprintf("d%d-h%d", day, hour)
}

func lectureOnlyFixture(t *testing.T) *serviceFixture {
	teacherID := "t-1"
	courses := []models.Course{{ID: "c-1", Code: "CS201", Name: "Algorithms", LectureHours: 1}}
	offerings := []models.Offering{{ID: "o-1", CourseID: "c-1", SectionID: "s-1", TeacherID: &teacherID, ExpectedSize: 40}}
	return newServiceFixture(t, offerings, courses)
}

func TestTimetableServiceGeneratePersists(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := NewTimetableService(fix.snapshot, fix.store, scheduler.NewEngine(scheduler.DefaultConfig()), fix.cache, NewMetricsService(), zap.NewNop())

	resp, err := svc.Generate(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, fix.store.replaceCalls)
	assert.Equal(t, 1, resp.Stats.SuccessfulUnits)
	assert.Equal(t, 0, resp.Stats.FailedUnits)
	assert.InDelta(t, 100.0, resp.Stats.Utilization, 0.01)
	require.Len(t, resp.Assignments, 1)
	assert.NotEmpty(t, resp.Assignments[0].Day)
	assert.Contains(t, fix.repo.invalidated, recommendationCachePattern)
}

func TestTimetableServiceGenerateDryRun(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := NewTimetableService(fix.snapshot, fix.store, scheduler.NewEngine(scheduler.DefaultConfig()), fix.cache, NewMetricsService(), zap.NewNop())

	resp, err := svc.Generate(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, resp.DryRun)
	assert.Zero(t, fix.store.replaceCalls)
	assert.Empty(t, fix.store.items)
}

func TestTimetableServiceGenerateSetupError(t *testing.T) {
	teacherID := "t-1"
	courses := []models.Course{{ID: "c-1", Code: "CS201", Name: "Algorithms", LectureHours: 1}}
	offerings := []models.Offering{{ID: "o-1", CourseID: "missing", SectionID: "s-1", TeacherID: &teacherID}}
	fix := newServiceFixture(t, offerings, courses)
	svc := NewTimetableService(fix.snapshot, fix.store, scheduler.NewEngine(scheduler.DefaultConfig()), fix.cache, NewMetricsService(), zap.NewNop())

	_, err := svc.Generate(context.Background(), false)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSetup.Code, appErr.Code)
	assert.Zero(t, fix.store.replaceCalls)
}

func TestTimetableServiceGenerateKeepsLockedRows(t *testing.T) {
	fix := lectureOnlyFixture(t)
	room := "r-1"
	fix.store.items = []models.Assignment{
		{ID: "keep", OfferingID: "o-1", Kind: models.KindLecture, SlotID: "d1-h8", RoomID: &room, Locked: true},
	}
	svc := NewTimetableService(fix.snapshot, fix.store, scheduler.NewEngine(scheduler.DefaultConfig()), fix.cache, NewMetricsService(), zap.NewNop())

	resp, err := svc.Generate(context.Background(), false)
	require.NoError(t, err)

	var lockedIDs []string
	for _, view := range resp.Assignments {
		if view.Locked {
			lockedIDs = append(lockedIDs, view.ID)
		}
	}
	assert.Equal(t, []string{"keep"}, lockedIDs)

	kept, err := fix.store.ListLocked(context.Background())
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "d1-h8", kept[0].SlotID)
}
