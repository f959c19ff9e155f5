// Package worker renders queued export requests into report files.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/export"
	"budget/internal/services"
)

// ReportUploader pushes a rendered report to an external share and returns
// its link. Optional; exports always land in the local file store first.
type ReportUploader interface {
	Upload(ctx context.Context, name, mimeType string, data []byte) (string, error)
}

// ExportWorker consumes export requests and renders the PDF and CSV reports.
type ExportWorker struct {
	summaries *services.SummaryService
	files     *export.FileStore
	uploader  ReportUploader
}

func NewExportWorker(summaries *services.SummaryService, files *export.FileStore, uploader ReportUploader) *ExportWorker {
	return &ExportWorker{
		summaries: summaries,
		files:     files,
		uploader:  uploader,
	}
}

// HandleExportRequest processes a single export request. An error return
// requeues the delivery, so only failures worth retrying bubble up.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	month := msg.Month
	if month == "" {
		month = core.CurrentMonthKey()
	}
	if !month.Valid() {
		// Malformed months never become valid; log and drop.
		slog.ErrorContext(ctx, "Dropping export request with invalid month", "month", msg.Month)
		return nil
	}

	slog.InfoContext(ctx, "Processing export request",
		"month", month,
		"owner", msg.Owner,
		"has_snapshot", msg.Snapshot != nil)

	snap := msg.Snapshot
	if snap == nil {
		built, err := w.summaries.SnapshotFor(ctx, month, core.ExportLimit)
		if err != nil {
			return fmt.Errorf("build snapshot: %w", err)
		}
		snap = &built
	}

	pdfURL, err := w.renderAndStore(ctx, msg.Owner, *snap, "pdf", "application/pdf", export.RenderPDF)
	if err != nil {
		return err
	}
	csvURL, err := w.renderAndStore(ctx, msg.Owner, *snap, "csv", "text/csv", export.RenderCSV)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Export completed",
		"month", month,
		"pdf_url", pdfURL,
		"csv_url", csvURL)

	return nil
}

func (w *ExportWorker) renderAndStore(ctx context.Context, owner string, snap core.Snapshot, ext, mimeType string, render func(core.Snapshot) ([]byte, error)) (string, error) {
	data, err := render(snap)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", ext, err)
	}

	path, url, err := w.files.Save(owner, snap.Month, ext, data)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", ext, err)
	}
	slog.InfoContext(ctx, "Report stored", "path", path, "url", url)

	if w.uploader != nil {
		name := fmt.Sprintf("budget-report-%s.%s", snap.Month, ext)
		link, err := w.uploader.Upload(ctx, name, mimeType, data)
		if err != nil {
			// The local copy exists; a failed share is not worth a requeue.
			slog.WarnContext(ctx, "Drive upload failed, keeping local copy",
				"name", name, "error", err)
			return url, nil
		}
		slog.InfoContext(ctx, "Report shared", "name", name, "link", link)
		return link, nil
	}

	return url, nil
}
