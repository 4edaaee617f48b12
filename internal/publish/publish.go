// Package publish uploads finished clips to Google Drive and exposes them
// through a public link.
package publish

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/shorts-worker/internal/config"
)

// DriveUploader publishes files to Google Drive. Authentication happens
// once at construction using a standing refresh token; failures there are
// init-stage errors, not publish-stage errors.
type DriveUploader struct {
	svc      *drive.Service
	folderID string
	log      *zap.SugaredLogger
}

// New authenticates against Drive with the configured refresh credential
// and returns an uploader bound to the optional destination folder.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*DriveUploader, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRefreshToken == "" {
		return nil, fmt.Errorf("missing Google OAuth credentials")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	token := &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &DriveUploader{svc: svc, folderID: cfg.DriveFolderID, log: log}, nil
}

// Publish uploads the file as a new Drive object, grants read access to
// anyone with the link, and returns the viewable link.
func (u *DriveUploader) Publish(ctx context.Context, path, displayName string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("file to upload not found: %w", err)
	}
	defer f.Close()

	meta := u.fileMetadata(displayName)
	u.log.Infow("starting upload", "name", meta.Name)

	// Media uses a resumable upload for large content, which is what a
	// multi-hundred-megabyte clip needs.
	created, err := u.svc.Files.Create(meta).
		Media(f, googleapi.ContentType("video/mp4")).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("Drive upload failed: %w", err)
	}

	_, err = u.svc.Permissions.Create(created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to set public permission: %w", err)
	}

	u.log.Infow("upload complete", "file_id", created.Id)
	return created.WebViewLink, nil
}

// fileMetadata builds the Drive object metadata: the clip title with a
// " #Shorts" marker, and the destination folder when one is configured.
func (u *DriveUploader) fileMetadata(displayName string) *drive.File {
	meta := &drive.File{
		Name:     displayName + " #Shorts",
		MimeType: "video/mp4",
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}
	return meta
}
