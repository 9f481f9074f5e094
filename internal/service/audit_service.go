package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/jobs"
)

type auditLogRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditConfig sizes the background writer.
type AuditConfig struct {
	Workers      int
	BufferSize   int
	MaxRetries   int
	WriteTimeout time.Duration
}

// AuditService persists audit entries off the request path. When the buffer is
// full the entry is written synchronously instead of being dropped.
type AuditService struct {
	repo    auditLogRepository
	queue   *jobs.Queue[*models.AuditLog]
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuditService builds the writer. Call Start before use and Stop on shutdown.
func NewAuditService(repo auditLogRepository, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	svc := &AuditService{repo: repo, timeout: cfg.WriteTimeout, logger: logger}
	svc.queue = jobs.New("audit", svc.write, jobs.Config{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return svc
}

// Start launches the background workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes pending entries.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// CreateAuditLog stamps and enqueues an entry.
func (s *AuditService) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	err := s.queue.TryEnqueue(entry)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jobs.ErrQueueFull) && !errors.Is(err, jobs.ErrQueueClosed) {
		return err
	}
	s.logger.Warn("audit queue unavailable, writing inline", zap.String("action", entry.Action), zap.Error(err))
	return s.write(context.WithoutCancel(ctx), entry)
}

func (s *AuditService) write(ctx context.Context, entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		return err
	}
	return nil
}
