package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/dresssync-api/internal/application/ports"
	"github.com/jhoicas/dresssync-api/pkg/config"
	"github.com/jhoicas/dresssync-api/pkg/logger"
)

var _ ports.FileStorage = (*S3Storage)(nil)

// S3Storage sube archivos a un bucket S3 o compatible (MinIO, R2, etc.).
type S3Storage struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
	log       *logger.Logger
}

// NewS3Storage valida la configuración y arma el cliente. Con S3_ENDPOINT vacío se usa AWS.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET es requerido")
	}
	if log == nil {
		log = logger.Nop()
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración AWS: %w", err)
	}

	endpoint := strings.TrimRight(cfg.S3Endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("storage: S3_ENDPOINT inválido: %w", err)
		}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicURL := strings.TrimRight(cfg.S3PublicURL, "/")
	if publicURL == "" {
		switch {
		case endpoint != "" && cfg.S3UsePathStyle:
			publicURL = endpoint + "/" + cfg.S3Bucket
		case endpoint != "":
			u, _ := url.Parse(endpoint)
			publicURL = u.Scheme + "://" + cfg.S3Bucket + "." + u.Host
		default:
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
		}
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		prefix:    "uploads/",
		publicURL: publicURL,
		log:       log.Component("s3"),
	}, nil
}

// Save sube el objeto bajo uploads/name.
func (s *S3Storage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := s.prefix + name
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("storage: subir %s: %w", key, err)
	}
	s.log.Debug().Str("bucket", s.bucket).Str("key", key).Int64("size", size).Msg("archivo subido")
	return s.publicURL + "/" + key, nil
}
