package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
)

// ExportPublisher is the queue-side dependency of the export service.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

// ExportService enqueues report exports for the worker. The request carries
// the snapshot the caller was looking at so the rendered report matches the
// screen even if records change before the worker picks it up.
type ExportService struct {
	summaries *SummaryService
	publisher ExportPublisher
}

func NewExportService(summaries *SummaryService, publisher ExportPublisher) *ExportService {
	return &ExportService{summaries: summaries, publisher: publisher}
}

// RequestExport publishes an export request for the month. A nil publisher
// means the queue is not configured, which is an error here: the caller
// asked for an export that would never happen.
func (s *ExportService) RequestExport(ctx context.Context, owner string, month core.MonthKey) error {
	if s.publisher == nil {
		return fmt.Errorf("export queue not configured")
	}
	if month == "" {
		month = core.CurrentMonthKey()
	}
	if !month.Valid() {
		return fmt.Errorf("month %q: %w", month, core.ErrInvalidMonthKey)
	}

	snap, err := s.summaries.SnapshotFor(ctx, month, core.ExportLimit)
	if err != nil {
		// The worker can rebuild the snapshot itself; enqueue without one.
		slog.WarnContext(ctx, "Snapshot unavailable at enqueue time, deferring to worker",
			"month", month, "error", err)
		return s.publisher.PublishExportRequest(ctx, amqp.NewExportRequestMessage(owner, month, nil))
	}

	return s.publisher.PublishExportRequest(ctx, amqp.NewExportRequestMessage(owner, month, &snap))
}
