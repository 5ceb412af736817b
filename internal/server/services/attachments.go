package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sc "github.com/dmitrijs2005/kinsync/internal/server/config"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentService hands out presigned object-storage URLs so clients can
// upload contact avatars (possibly created offline) directly to S3.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		config:      cfg,
	}
}

// StorageKey returns a fresh object key scoped to workspaceID.
func StorageKey(workspaceID string, now time.Time) string {
	return fmt.Sprintf("workspaces/%s/%d/%02d/%02d/%v", workspaceID, now.Year(), now.Month(), now.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// RequestUpload records a pending attachment and returns where to PUT it.
func (s *AttachmentService) RequestUpload(ctx context.Context, workspaceID, userID string) (*models.UploadTask, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := StorageKey(workspaceID, time.Now().UTC())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	a := &models.Attachment{StorageKey: key, WorkspaceID: workspaceID, UploadedBy: userID}
	if err := s.repomanager.Attachments(s.db).Create(ctx, a); err != nil {
		return nil, fmt.Errorf("error recording attachment: %w", err)
	}

	return &models.UploadTask{Key: key, URL: req.URL}, nil
}

// CompleteUpload marks key as uploaded. Unknown keys yield common.ErrNotFound.
func (s *AttachmentService) CompleteUpload(ctx context.Context, workspaceID, key string) error {
	if err := s.repomanager.Attachments(s.db).MarkUploaded(ctx, workspaceID, key); err != nil {
		return fmt.Errorf("error updating attachment: %w", err)
	}
	return nil
}

// DownloadURL presigns a GET for an attachment of workspaceID.
func (s *AttachmentService) DownloadURL(ctx context.Context, workspaceID, key string) (string, error) {
	a, err := s.repomanager.Attachments(s.db).Get(ctx, workspaceID, key)
	if err != nil {
		return "", fmt.Errorf("error getting attachment: %w", err)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &a.StorageKey,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return req.URL, nil
}
