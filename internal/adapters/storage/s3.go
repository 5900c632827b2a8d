package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"devevent/internal/domain"
)

// Config holds configuration for creating an image store.
type Config struct {
	Provider        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL prefixes object keys in returned URLs (e.g. a CDN). Defaults to the bucket's S3 URL.
	PublicBaseURL string
}

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewImageStore creates an image store from config. Provider "s3" uploads to S3;
// anything else returns a store that rejects every upload.
func NewImageStore(cfg Config, logger *slog.Logger) (domain.ImageStore, error) {
	switch cfg.Provider {
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 image store: bucket is required")
		}
		if cfg.Region == "" {
			return nil, fmt.Errorf("s3 image store: region is required")
		}
		awsCfg := aws.Config{Region: cfg.Region}
		if cfg.AccessKeyID != "" {
			awsCfg.Credentials = aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			)
		}
		return newS3Store(s3.NewFromConfig(awsCfg), cfg), nil
	case "", "disabled":
		logger.Warn("image uploads are disabled; events must be created with an image URL")
		return disabledStore{}, nil
	default:
		return nil, fmt.Errorf("unknown image store provider %q", cfg.Provider)
	}
}

type s3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

func newS3Store(client s3API, cfg Config) *s3Store {
	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &s3Store{client: client, bucket: cfg.Bucket, baseURL: base}
}

// Store uploads data under folder/<uuid><ext> and returns its public URL.
func (s *s3Store) Store(ctx context.Context, data []byte, folder string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrUpload)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: unsupported content type %s", domain.ErrUpload, contentType)
	}
	key := path.Join(strings.Trim(folder, "/"), uuid.NewString()+extension(contentType))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %w", domain.ErrUpload, key, err)
	}
	return s.baseURL + "/" + key, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

type disabledStore struct{}

func (disabledStore) Store(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("%w: image store is not configured", domain.ErrUpload)
}
