package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusgrid/timetable-api/internal/models"
)

// weekGrid builds the standard test grid: five days with eight hourly
// non-lab slots from 08:00 to 16:00.
func weekGrid() []models.TimeSlot {
	var slots []models.TimeSlot
	for day := models.Monday; day <= models.Friday; day++ {
		for hour := 8; hour < 16; hour++ {
			slots = append(slots, models.TimeSlot{
				ID:       fmt.Sprintf("d%d-h%d", day, hour),
				Day:      day,
				StartMin: hour * 60,
				EndMin:   (hour + 1) * 60,
			})
		}
	}
	return slots
}

func labCluster(day models.Weekday, startHour, count int, cluster string) []models.TimeSlot {
	var slots []models.TimeSlot
	for i := 0; i < count; i++ {
		hour := startHour + i
		slots = append(slots, models.TimeSlot{
			ID:       fmt.Sprintf("%s-%d", cluster, hour),
			Day:      day,
			StartMin: hour * 60,
			EndMin:   (hour + 1) * 60,
			IsLab:    true,
			Cluster:  cluster,
		})
	}
	return slots
}

func teacherFixture(id string, perDay, perWeek int) models.Teacher {
	return models.Teacher{
		ID:         id,
		FullName:   "Teacher " + id,
		Active:     true,
		MaxPerDay:  perDay,
		MaxPerWeek: perWeek,
	}
}

func offeringFixture(id string, course models.Course, section models.Section, teacher *models.Teacher, size int) models.ResolvedOffering {
	off := models.ResolvedOffering{
		Offering: models.Offering{ID: id, CourseID: course.ID, SectionID: section.ID, ExpectedSize: size},
		Course:   course,
		Section:  section,
		Teacher:  teacher,
	}
	if teacher != nil {
		off.TeacherID = &teacher.ID
	}
	return off
}

func classroom(id string, capacity int) models.Room {
	return models.Room{ID: id, Name: id, Capacity: capacity, Kind: models.RoomClassroom}
}

func placementMap(assignments []models.Assignment) map[string]string {
	placed := make(map[string]string)
	for _, a := range assignments {
		room := ""
		if a.RoomID != nil {
			room = *a.RoomID
		}
		placed[a.OfferingID+"/"+string(a.Kind)+"/"+a.SlotID] = room
	}
	return placed
}

func TestGenerateFullWeekForSingleOffering(t *testing.T) {
	teacher := teacherFixture("t-1", 3, 12)
	course := models.Course{ID: "c-1", Code: "CS101", LectureHours: 3, TutorialHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 60), classroom("r-2", 60)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 4, "3 lectures + 1 tutorial")
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 4, result.Stats.SuccessfulUnits)
	assert.Equal(t, 0, result.Stats.FailedUnits)
	assert.Equal(t, 100.0, result.Stats.Utilization)

	kinds := map[models.SessionKind]int{}
	slotSeen := map[string]bool{}
	dayHours := map[models.Weekday]int{}
	slotByID := map[string]models.TimeSlot{}
	for _, s := range in.Slots {
		slotByID[s.ID] = s
	}
	for _, a := range result.Assignments {
		kinds[a.Kind]++
		assert.False(t, slotSeen[a.SlotID], "each unit lands on a distinct slot")
		slotSeen[a.SlotID] = true
		dayHours[slotByID[a.SlotID].Day]++
		require.NotNil(t, a.RoomID)
	}
	assert.Equal(t, 3, kinds[models.KindLecture])
	assert.Equal(t, 1, kinds[models.KindTutorial])
	for day, hours := range dayHours {
		assert.LessOrEqual(t, hours, 3, "no day may exceed the 3 hour cap (%s)", day)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	teacherA := teacherFixture("t-a", 4, 16)
	teacherB := teacherFixture("t-b", 4, 16)
	courseA := models.Course{ID: "c-a", LectureHours: 2, TutorialHours: 1}
	courseB := models.Course{ID: "c-b", LectureHours: 3}
	section := models.Section{ID: "s-1", Program: "EE", Year: 2}

	in := Input{
		Teachers: []models.Teacher{teacherA, teacherB},
		Rooms:    []models.Room{classroom("r-1", 50), classroom("r-2", 80)},
		Slots:    weekGrid(),
		Offerings: []models.ResolvedOffering{
			offeringFixture("o-a", courseA, section, &teacherA, 45),
			offeringFixture("o-b", courseB, section, &teacherB, 45),
		},
	}

	engine := NewEngine(DefaultConfig())
	first, err := engine.Generate(in)
	require.NoError(t, err)
	second, err := engine.Generate(in)
	require.NoError(t, err)

	assert.Equal(t, placementMap(first.Assignments), placementMap(second.Assignments))
	assert.Equal(t, first.Stats, second.Stats)
}

func TestGeneratePlacesPracticalInLabBlock(t *testing.T) {
	teacher := teacherFixture("t-1", 6, 20)
	course := models.Course{ID: "c-phy", LectureHours: 1, PracticalHours: 2}
	section := models.Section{ID: "s-1", Program: "PH", Year: 1}

	slots := append(weekGrid(), labCluster(models.Wednesday, 16, 3, "phy-lab")...)
	labRoom := models.Room{ID: "lab-1", Name: "Physics Lab", Capacity: 30, Kind: models.RoomLab}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 60), labRoom},
		Slots:     slots,
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 25)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	slotByID := map[string]models.TimeSlot{}
	for _, s := range slots {
		slotByID[s.ID] = s
	}
	var practicals []models.Assignment
	for _, a := range result.Assignments {
		if a.Kind == models.KindPractical {
			practicals = append(practicals, a)
		}
	}
	require.Len(t, practicals, 2, "one row per atomic lab slot")
	for _, a := range practicals {
		assert.True(t, slotByID[a.SlotID].IsLab)
		require.NotNil(t, a.RoomID)
		assert.Equal(t, "lab-1", *a.RoomID)
	}
	assert.Equal(t, *practicals[0].RoomID, *practicals[1].RoomID, "lab block shares one room")
}

func TestGeneratePreservesLockedAssignments(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	sectionA := models.Section{ID: "s-a", Program: "CS", Year: 1}
	sectionB := models.Section{ID: "s-b", Program: "CS", Year: 2}

	room := "r-1"
	locked := models.Assignment{
		ID:         "locked-1",
		OfferingID: "o-locked",
		Kind:       models.KindLecture,
		SlotID:     "d1-h8",
		RoomID:     &room,
		Locked:     true,
	}

	in := Input{
		Teachers: []models.Teacher{teacher},
		Rooms:    []models.Room{classroom("r-1", 60)},
		Slots:    weekGrid(),
		Offerings: []models.ResolvedOffering{
			offeringFixture("o-locked", course, sectionA, &teacher, 40),
			offeringFixture("o-new", course, sectionB, &teacher, 40),
		},
		Locked: []models.Assignment{locked},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	var found *models.Assignment
	for i, a := range result.Assignments {
		if a.ID == "locked-1" {
			found = &result.Assignments[i]
		}
		if a.OfferingID == "o-new" {
			assert.NotEqual(t, "d1-h8", a.SlotID, "teacher is busy in the locked slot")
		}
	}
	require.NotNil(t, found, "locked assignment survives generation")
	assert.Equal(t, locked, *found, "locked assignment is untouched")
}

func TestGenerateDoesNotRegenerateLockedUnits(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	room := "r-1"
	locked := models.Assignment{
		ID:         "locked-1",
		OfferingID: "o-1",
		Kind:       models.KindLecture,
		SlotID:     "d1-h8",
		RoomID:     &room,
		Locked:     true,
	}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 60)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
		Locked:    []models.Assignment{locked},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	require.Len(t, result.Assignments, 1, "the locked row already covers the lecture requirement")
	assert.Equal(t, "locked-1", result.Assignments[0].ID)
	assert.Equal(t, 1, result.Stats.TotalUnitsRequired)
	assert.Equal(t, 1, result.Stats.SuccessfulUnits)
	assert.InDelta(t, 100.0, result.Stats.Utilization, 0.001)
}

func TestGenerateTopsUpPartiallyLockedOffering(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 2}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	room := "r-1"
	locked := models.Assignment{
		ID:         "locked-1",
		OfferingID: "o-1",
		Kind:       models.KindLecture,
		SlotID:     "d1-h8",
		RoomID:     &room,
		Locked:     true,
	}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 60)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
		Locked:    []models.Assignment{locked},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	require.Len(t, result.Assignments, 2, "one locked row plus one freshly placed lecture")
	for _, a := range result.Assignments {
		assert.Equal(t, models.KindLecture, a.Kind)
		if a.ID != "locked-1" {
			assert.NotEqual(t, "d1-h8", a.SlotID, "the new lecture lands on a free slot")
		}
	}
	assert.Equal(t, 2, result.Stats.SuccessfulUnits)
}

func TestGenerateCountsLockedPracticalBlockOnce(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", PracticalHours: 2}
	section := models.Section{ID: "s-1", Program: "PHY", Year: 2}

	labSlots := labCluster(models.Monday, 8, 2, "phy")
	labRoom := models.Room{ID: "lab-1", Name: "Physics Lab", Capacity: 30, Kind: models.RoomLab}
	room := "lab-1"
	lockedRows := []models.Assignment{
		{ID: "locked-1", OfferingID: "o-1", Kind: models.KindPractical, SlotID: labSlots[0].ID, RoomID: &room, Locked: true},
		{ID: "locked-2", OfferingID: "o-1", Kind: models.KindPractical, SlotID: labSlots[1].ID, RoomID: &room, Locked: true},
	}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{labRoom},
		Slots:     append(weekGrid(), labSlots...),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 25)},
		Locked:    lockedRows,
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	require.Len(t, result.Assignments, 2, "the two locked rows are one lab block, not two demands")
	assert.Equal(t, 1, result.Stats.TotalUnitsRequired)
	assert.Equal(t, 1, result.Stats.SuccessfulUnits)
}

func TestGenerateRoomTooSmallWhenEveryRoomUndersized(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 20), classroom("r-2", 25)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ReasonRoomTooSmall, result.Warnings[0].Reason, "a single shared room failure keeps its detail")
}

func TestGenerateWorkloadExceededWarning(t *testing.T) {
	teacher := teacherFixture("t-1", 1, 2)
	course := models.Course{ID: "c-1", LectureHours: 3}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	in := Input{
		Teachers:  []models.Teacher{teacher},
		Rooms:     []models.Room{classroom("r-1", 60)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.SuccessfulUnits)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ReasonWorkloadExceeded, result.Warnings[0].Reason)
	assert.Equal(t, "o-1", result.Warnings[0].OfferingID)
	assert.Equal(t, models.KindLecture, result.Warnings[0].Kind)
}

func TestGenerateSectionConflictWarning(t *testing.T) {
	teacherA := teacherFixture("t-a", 8, 40)
	teacherB := teacherFixture("t-b", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	// one slot, two offerings sharing a cohort
	in := Input{
		Teachers: []models.Teacher{teacherA, teacherB},
		Rooms:    []models.Room{classroom("r-1", 60), classroom("r-2", 60)},
		Slots:    weekGrid()[:1],
		Offerings: []models.ResolvedOffering{
			offeringFixture("o-a", course, section, &teacherA, 40),
			offeringFixture("o-b", course, section, &teacherB, 40),
		},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.SuccessfulUnits)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ReasonSectionConflict, result.Warnings[0].Reason)
}

func TestGenerateNoTeacherWarning(t *testing.T) {
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	in := Input{
		Rooms:     []models.Room{classroom("r-1", 60)},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, nil, 40)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)

	assert.Empty(t, filterKind(result.Assignments, models.KindLecture))
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ReasonNoTeacher, result.Warnings[0].Reason)
}

func TestGenerateRespectsExplicitAvailability(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	availability := models.AvailabilitySet{
		"t-1": {"d2-h9": true},
	}

	in := Input{
		Teachers:     []models.Teacher{teacher},
		Rooms:        []models.Room{classroom("r-1", 60)},
		Slots:        weekGrid(),
		Offerings:    []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
		Availability: availability,
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "d2-h9", result.Assignments[0].SlotID, "only declared slot is usable")
}

func TestGeneratePicksSmallestFittingRoom(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	course := models.Course{ID: "c-1", LectureHours: 1}
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	in := Input{
		Teachers: []models.Teacher{teacher},
		Rooms: []models.Room{
			classroom("r-big", 200),
			classroom("r-fit", 45),
			classroom("r-small", 20),
		},
		Slots:     weekGrid(),
		Offerings: []models.ResolvedOffering{offeringFixture("o-1", course, section, &teacher, 40)},
	}

	result, err := NewEngine(DefaultConfig()).Generate(in)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	require.NotNil(t, result.Assignments[0].RoomID)
	assert.Equal(t, "r-fit", *result.Assignments[0].RoomID)
}

func TestGenerateSetupErrors(t *testing.T) {
	teacher := teacherFixture("t-1", 8, 40)
	section := models.Section{ID: "s-1", Program: "CS", Year: 1}

	t.Run("zero duration slot", func(t *testing.T) {
		in := Input{
			Slots: []models.TimeSlot{{ID: "broken", Day: models.Monday, StartMin: 480, EndMin: 480}},
		}
		_, err := NewEngine(DefaultConfig()).Generate(in)
		var setupErr *SetupError
		require.ErrorAs(t, err, &setupErr)
	})

	t.Run("offering without course", func(t *testing.T) {
		in := Input{
			Slots: weekGrid(),
			Offerings: []models.ResolvedOffering{
				{Offering: models.Offering{ID: "o-1"}, Section: section, Teacher: &teacher},
			},
		}
		_, err := NewEngine(DefaultConfig()).Generate(in)
		var setupErr *SetupError
		require.ErrorAs(t, err, &setupErr)
	})
}

func TestOrderOfferingsPriority(t *testing.T) {
	praCourse := models.Course{ID: "c-p", LectureHours: 1, PracticalHours: 2}
	lecCourse := models.Course{ID: "c-l", LectureHours: 1}
	yearOne := models.Section{ID: "s-1", Year: 1}
	yearTwo := models.Section{ID: "s-2", Year: 2}

	offerings := []models.ResolvedOffering{
		offeringFixture("small-lec", lecCourse, yearOne, nil, 20),
		offeringFixture("big-lec", lecCourse, yearTwo, nil, 80),
		offeringFixture("practical", praCourse, yearTwo, nil, 30),
	}

	ordered := orderOfferings(offerings)
	assert.Equal(t, "practical", ordered[0].ID, "has-practical comes first")
	assert.Equal(t, "big-lec", ordered[1].ID, "then larger enrollment")
	assert.Equal(t, "small-lec", ordered[2].ID)
}

func filterKind(assignments []models.Assignment, kind models.SessionKind) []models.Assignment {
	var out []models.Assignment
	for _, a := range assignments {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
