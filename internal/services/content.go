// This file implements ContentService: the project/team content managed
// from the admin dashboard, plus presigned S3 URLs for image uploads.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/config"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/projects"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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

// MediaStorageKey returns a fresh object key for an uploaded image,
// partitioned by date.
func MediaStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// ContentService manages the content entities behind the public site.
type ContentService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	cfg    *config.Config
	logger logging.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ContentService {
	return &ContentService{
		db:     db,
		repos:  repos,
		cfg:    cfg,
		logger: logger.With("module", "content"),
	}
}

// ---- projects ----

func (s *ContentService) Projects(ctx context.Context, filter projects.ListFilter) ([]*models.Project, error) {
	return s.repos.Projects(s.db).List(ctx, filter)
}

func (s *ContentService) Project(ctx context.Context, id string) (*models.Project, error) {
	return s.repos.Projects(s.db).GetByID(ctx, id)
}

func (s *ContentService) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	created, err := s.repos.Projects(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "project created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *ContentService) UpdateProject(ctx context.Context, p *models.Project) error {
	return s.repos.Projects(s.db).Update(ctx, p)
}

func (s *ContentService) DeleteProject(ctx context.Context, id string) error {
	return s.repos.Projects(s.db).Delete(ctx, id)
}

// ---- team ----

func (s *ContentService) TeamMembers(ctx context.Context, limit, offset int) ([]*models.TeamMember, error) {
	return s.repos.Team(s.db).List(ctx, limit, offset)
}

func (s *ContentService) TeamMember(ctx context.Context, id string) (*models.TeamMember, error) {
	return s.repos.Team(s.db).GetByID(ctx, id)
}

func (s *ContentService) CreateTeamMember(ctx context.Context, m *models.TeamMember) (*models.TeamMember, error) {
	created, err := s.repos.Team(s.db).Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "team member created", "id", created.ID)
	return created, nil
}

func (s *ContentService) UpdateTeamMember(ctx context.Context, m *models.TeamMember) error {
	return s.repos.Team(s.db).Update(ctx, m)
}

func (s *ContentService) DeleteTeamMember(ctx context.Context, id string) error {
	return s.repos.Team(s.db).Delete(ctx, id)
}

// ---- media ----

func (s *ContentService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3AccessKey,
			s.cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignedUploadURL returns a presigned PUT URL and the object key the
// client must upload to. The key is later stored on the project or team
// row as image_key.
func (s *ContentService) PresignedUploadURL(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.cfg.S3Bucket
	key := MediaStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}

	return req.URL, key, nil
}

// PresignedGetURL returns a short-lived download URL for a stored image key.
func (s *ContentService) PresignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
