package publish

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const contentTypeHTML = "text/html; charset=utf-8"

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader publishes generated files to S3.
type Uploader struct {
	client S3API
	config *Config
	log    *slog.Logger
}

// New creates an Uploader backed by the AWS SDK. Static credentials are used
// when configured, otherwise the default AWS credential chain.
func New(ctx context.Context, cfg *Config, log *slog.Logger) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.EndpointURL != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true // Required for MinIO and similar services
		})
		log.Info("Using custom S3 endpoint", "endpoint", cfg.EndpointURL)
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return NewWithClient(client, cfg, log), nil
}

func NewWithClient(client S3API, cfg *Config, log *slog.Logger) *Uploader {
	return &Uploader{client: client, config: cfg, log: log}
}

// Publish uploads the file at filePath under <prefix>/<basename> and returns its URL.
func (u *Uploader) Publish(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	key := u.key(filePath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeHTML),
		ContentMD5:  aws.String(computeMD5(data)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s/%s: %w", filePath, u.config.Bucket, key, err)
	}

	url := u.url(key)
	u.log.Info("Published file", "path", filePath, "url", url, "bytes", len(data))
	return url, nil
}

func (u *Uploader) key(filePath string) string {
	name := filepath.Base(filePath)
	prefix := strings.Trim(u.config.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func (u *Uploader) url(key string) string {
	if u.config.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.config.EndpointURL, "/"), u.config.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.config.Bucket, u.config.Region, key)
}

// computeMD5 computes the base64-encoded MD5 hash of the data.
func computeMD5(data []byte) string {
	hash := md5.Sum(data)
	return base64.StdEncoding.EncodeToString(hash[:])
}
