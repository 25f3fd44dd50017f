package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/pkg/jobs"
	"github.com/campusgrid/timetable-api/pkg/storage"
)

const (
	archiveJobStore   = "store"
	archiveJobCleanup = "cleanup"
)

type archivePayload struct {
	Filename string
	Data     []byte
}

// ArchiveService persists copies of rendered exports in the background so
// export responses never wait on disk.
type ArchiveService struct {
	store     *storage.LocalStorage
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
}

// NewArchiveService wires the background archive queue.
func NewArchiveService(store *storage.LocalStorage, retention time.Duration, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	s := &ArchiveService{store: store, retention: retention, logger: logger}
	s.queue = jobs.NewQueue("export-archive", s.handle, jobs.QueueConfig{Workers: 1, Logger: logger})
	return s
}

// Start launches the archive workers and schedules a retention sweep.
func (s *ArchiveService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: archiveJobCleanup}); err != nil {
		s.logger.Warn("archive cleanup not scheduled", zap.Error(err))
	}
}

// Stop drains the workers.
func (s *ArchiveService) Stop() {
	s.queue.Stop()
}

// Store queues one rendered document for archiving.
func (s *ArchiveService) Store(filename string, data []byte) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    archiveJobStore,
		Payload: archivePayload{Filename: filename, Data: data},
	})
}

func (s *ArchiveService) handle(_ context.Context, job jobs.Job) error {
	switch job.Type {
	case archiveJobStore:
		payload, ok := job.Payload.(archivePayload)
		if !ok {
			return fmt.Errorf("unexpected archive payload %T", job.Payload)
		}
		if _, err := s.store.Save(payload.Filename, payload.Data); err != nil {
			return err
		}
		s.logger.Debug("export archived", zap.String("filename", payload.Filename))
		return nil
	case archiveJobCleanup:
		deleted, err := s.store.CleanupOlderThan(s.retention)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			s.logger.Info("archive retention sweep", zap.Int("deleted", len(deleted)))
		}
		return nil
	default:
		return fmt.Errorf("unknown archive job type %q", job.Type)
	}
}
