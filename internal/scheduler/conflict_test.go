package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusgrid/timetable-api/internal/models"
)

func conflictFixture() (Input, []models.Assignment) {
	teacherA := teacherFixture("t-a", 8, 40)
	teacherB := teacherFixture("t-b", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	sectionA := models.Section{ID: "s-a", Program: "CS", Year: 1}
	sectionB := models.Section{ID: "s-b", Program: "CS", Year: 2}

	in := Input{
		Teachers: []models.Teacher{teacherA, teacherB},
		Rooms:    []models.Room{classroom("r-1", 60), classroom("r-2", 60)},
		Slots:    weekGrid(),
		Offerings: []models.ResolvedOffering{
			offeringFixture("o-a", course, sectionA, &teacherA, 40),
			offeringFixture("o-b", course, sectionB, &teacherB, 40),
			offeringFixture("o-a2", course, sectionA, &teacherA, 40),
		},
	}
	room := "r-1"
	current := []models.Assignment{
		{ID: "a-1", OfferingID: "o-a", Kind: models.KindLecture, SlotID: "d1-h8", RoomID: &room},
	}
	return in, current
}

func TestCheckConflictsCleanMove(t *testing.T) {
	in, current := conflictFixture()

	violations, err := CheckConflicts(in, current, Proposal{
		OfferingID: "o-b", Kind: models.KindLecture, SlotID: "d2-h10",
	})
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckConflictsDetectsAllDimensions(t *testing.T) {
	in, current := conflictFixture()
	room := "r-1"

	// o-a2 shares teacher t-a and section s-a with the existing a-1, and the
	// proposal also reuses its room in the same slot
	violations, err := CheckConflicts(in, current, Proposal{
		OfferingID: "o-a2", Kind: models.KindLecture, SlotID: "d1-h8", RoomID: &room,
	})
	require.NoError(t, err)

	constraints := map[HardConstraint]bool{}
	for _, v := range violations {
		constraints[v.Constraint] = true
		assert.Equal(t, "a-1", v.ConflictsWith)
	}
	assert.True(t, constraints[ConstraintTeacherDoubleBooked])
	assert.True(t, constraints[ConstraintRoomDoubleBooked])
	assert.True(t, constraints[ConstraintSectionDoubleBooked])
}

func TestCheckConflictsKindMismatch(t *testing.T) {
	in, current := conflictFixture()

	violations, err := CheckConflicts(in, current, Proposal{
		OfferingID: "o-b", Kind: models.KindPractical, SlotID: "d3-h10",
	})
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Equal(t, ConstraintSlotKindMismatch, violations[0].Constraint)
}

func TestCheckConflictsIgnoresOwnRows(t *testing.T) {
	in, current := conflictFixture()

	// moving o-a's own lecture onto an adjacent slot conflicts with nothing
	violations, err := CheckConflicts(in, current, Proposal{
		OfferingID: "o-a", Kind: models.KindLecture, SlotID: "d1-h9",
	})
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckConflictsUnknownTargets(t *testing.T) {
	in, current := conflictFixture()

	_, err := CheckConflicts(in, current, Proposal{OfferingID: "nope", Kind: models.KindLecture, SlotID: "d1-h8"})
	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)

	_, err = CheckConflicts(in, current, Proposal{OfferingID: "o-a", Kind: models.KindLecture, SlotID: "nope"})
	require.ErrorAs(t, err, &setupErr)
}
