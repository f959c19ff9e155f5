// Package drive uploads rendered reports to Google Drive and hands back a
// shareable link.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
)

type Uploader struct {
	svc      *gdrive.Service
	folderID string
}

// NewFromEnv creates a Drive uploader using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_DRIVE_FOLDER_ID.
func NewFromEnv(ctx context.Context) (*Uploader, error) {
	credentialsJSON, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gdrive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Uploader{
		svc:      svc,
		folderID: strings.TrimSpace(os.Getenv("GOOGLE_DRIVE_FOLDER_ID")),
	}, nil
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return credentialsJSON, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Upload stores the report on Drive, makes it link-readable and returns the
// web view link.
func (u *Uploader) Upload(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	meta := &gdrive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	file, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	_, err = u.svc.Permissions.Create(file.Id, &gdrive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Report uploaded to Drive", "name", name, "file_id", file.Id)
	return file.WebViewLink, nil
}
