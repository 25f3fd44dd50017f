package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/pkg/export"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

// ExportFile is a rendered timetable document.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportArchive receives copies of rendered export documents.
type ExportArchive interface {
	Store(filename string, data []byte) error
}

// ExportService renders the stored timetable as CSV or PDF.
type ExportService struct {
	snapshot     *SnapshotLoader
	assignments  assignmentStore
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	archive      ExportArchive
	validator    *validator.Validate
	organization string
	logger       *zap.Logger
}

// NewExportService wires exporting. A nil archive disables export archiving.
func NewExportService(
	snapshot *SnapshotLoader,
	assignments assignmentStore,
	csv *export.CSVExporter,
	pdf *export.PDFExporter,
	archive ExportArchive,
	organization string,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		snapshot:     snapshot,
		assignments:  assignments,
		csv:          csv,
		pdf:          pdf,
		archive:      archive,
		validator:    validator.New(),
		organization: organization,
		logger:       logger,
	}
}

var exportHeaders = []string{"Day", "Start", "End", "Course", "Section", "Teacher", "Kind", "Room", "Locked"}

// Export renders the current timetable, optionally restricted to one section
// or teacher, in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	in, err := s.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	slotByID := make(map[string]models.TimeSlot, len(in.Slots))
	for _, slot := range in.Slots {
		slotByID[slot.ID] = slot
	}
	roomByID := make(map[string]models.Room, len(in.Rooms))
	for _, room := range in.Rooms {
		roomByID[room.ID] = room
	}
	offeringByID := make(map[string]models.ResolvedOffering, len(in.Offerings))
	for _, off := range in.Offerings {
		offeringByID[off.ID] = off
	}

	type exportRow struct {
		day   models.Weekday
		start int
		cells []string
	}
	var rows []exportRow
	for _, a := range assignments {
		off, ok := offeringByID[a.OfferingID]
		if !ok {
			continue
		}
		if query.SectionID != "" && off.Section.ID != query.SectionID {
			continue
		}
		teacherName := ""
		if off.Teacher != nil {
			if query.TeacherID != "" && off.Teacher.ID != query.TeacherID {
				continue
			}
			teacherName = off.Teacher.FullName
		} else if query.TeacherID != "" {
			continue
		}

		slot, ok := slotByID[a.SlotID]
		if !ok {
			continue
		}
		roomName := ""
		if a.RoomID != nil {
			if room, ok := roomByID[*a.RoomID]; ok {
				roomName = room.Name
			}
		}
		locked := ""
		if a.Locked {
			locked = "yes"
		}
		rows = append(rows, exportRow{
			day:   slot.Day,
			start: slot.StartMin,
			cells: []string{
				slot.Day.String(),
				formatMinute(slot.StartMin),
				formatMinute(slot.EndMin),
				fmt.Sprintf("%s %s", off.Course.Code, off.Course.Name),
				sectionLabel(off.Section),
				teacherName,
				string(a.Kind),
				roomName,
				locked,
			},
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].day != rows[j].day {
			return rows[i].day < rows[j].day
		}
		return rows[i].start < rows[j].start
	})

	table := export.Table{Headers: exportHeaders}
	for _, row := range rows {
		table.Rows = append(table.Rows, row.cells)
	}

	var file *ExportFile
	switch query.Format {
	case "csv":
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, err
		}
		file = &ExportFile{Content: content, ContentType: "text/csv", Filename: "timetable.csv"}
	case "pdf":
		content, err := s.pdf.Render(table, s.organization, "Weekly Timetable")
		if err != nil {
			return nil, err
		}
		file = &ExportFile{Content: content, ContentType: "application/pdf", Filename: "timetable.pdf"}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	s.archiveCopy(file)
	return file, nil
}

// archiveCopy keeps a timestamped copy of the rendered document. Archiving is
// best effort and never fails the export itself.
func (s *ExportService) archiveCopy(file *ExportFile) {
	if s.archive == nil {
		return
	}
	ext := filepath.Ext(file.Filename)
	stamped := fmt.Sprintf("%s-%s%s",
		strings.TrimSuffix(file.Filename, ext),
		time.Now().UTC().Format("20060102-150405"),
		ext,
	)
	if err := s.archive.Store(stamped, file.Content); err != nil {
		s.logger.Warn("export archive failed", zap.String("filename", stamped), zap.Error(err))
	}
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func sectionLabel(section models.Section) string {
	if section.Label != "" {
		return fmt.Sprintf("%s-%d %s", section.Program, section.Year, section.Label)
	}
	return fmt.Sprintf("%s-%d", section.Program, section.Year)
}
