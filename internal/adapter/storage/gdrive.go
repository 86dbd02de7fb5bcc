package storage

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/semmidev/exbackup/internal/config"
)

type GDriveStorage struct {
	service  *drive.Service
	folderID string
}

// NewGDrive authenticates either with a service-account credentials file or
// with an OAuth client secret plus a previously issued refresh token.
func NewGDrive(ctx context.Context, cfg *config.UploadTarget) (*GDriveStorage, error) {
	var opt option.ClientOption

	if cfg.ClientSecretFile != "" && cfg.RefreshToken != "" {
		ts, err := refreshTokenSource(ctx, cfg.ClientSecretFile, cfg.RefreshToken)
		if err != nil {
			return nil, err
		}
		opt = option.WithTokenSource(ts)
	} else {
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	}

	service, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStorage{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

func refreshTokenSource(ctx context.Context, clientSecretPath, refreshToken string) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret: %w", err)
	}

	return oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
}

func (g *GDriveStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileMetadata := &drive.File{
		Name:     remoteName,
		MimeType: "application/x-bzip2",
	}
	if g.folderID != "" {
		fileMetadata.Parents = []string{g.folderID}
	}

	_, err = g.service.Files.Create(fileMetadata).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}
