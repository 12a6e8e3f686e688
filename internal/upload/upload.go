// Package upload copies finished recordings to S3 compatible object storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"audiocap/internal/config"
	"audiocap/internal/logging"
)

// ErrNotConfigured is returned when uploads are disabled or incomplete.
var ErrNotConfigured = errors.New("upload is not configured")

// Result describes a stored object.
type Result struct {
	Bucket       string `json:"bucket"`
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	DeletedLocal bool   `json:"deleted_local"`
}

// Uploader puts recordings into one bucket.
type Uploader struct {
	client *s3.Client
	cfg    config.Upload
	logger *slog.Logger
}

// New builds an uploader from the [upload] section.
func New(cfg config.Upload, logger *slog.Logger) (*Uploader, error) {
	if !cfg.Enabled || cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, ErrNotConfigured
	}
	return &Uploader{
		client: newClient(cfg),
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "upload"),
	}, nil
}

func newClient(cfg config.Upload) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = region
			// Many S3 compatible stores reject the streaming checksum trailer.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		},
	}
	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.New(s3.Options{}, options...)
}

// ObjectKey returns the key a local file is stored under.
func (u *Uploader) ObjectKey(localPath string) string {
	name := filepath.Base(localPath)
	if u.cfg.Prefix == "" {
		return name
	}
	return path.Join(u.cfg.Prefix, name)
}

// Upload stores localPath and, when configured, removes the local copy.
func (u *Uploader) Upload(ctx context.Context, localPath string) (Result, error) {
	timeout := u.cfg.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, errors.New("s3 upload timeout"))
	defer cancel()

	file, err := os.Open(localPath)
	if err != nil {
		return Result{}, fmt.Errorf("open recording: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat recording: %w", err)
	}

	key := u.ObjectKey(localPath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(localPath)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload %s to s3://%s/%s: %w", filepath.Base(localPath), u.cfg.Bucket, key, err)
	}
	u.logger.Info("recording uploaded",
		logging.String("bucket", u.cfg.Bucket),
		logging.String("key", key),
		logging.Int64("bytes", info.Size()),
	)

	result := Result{Bucket: u.cfg.Bucket, Key: key, Size: info.Size()}
	if u.cfg.DeleteLocal {
		_ = file.Close()
		if err := os.Remove(localPath); err != nil {
			logging.WarnWithContext(u.logger, "failed to delete local recording after upload", "upload_cleanup",
				logging.String("path", localPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "local copy kept"),
			)
		} else {
			result.DeletedLocal = true
		}
	}
	return result, nil
}

// Check verifies the bucket is writable by storing and deleting a test object.
func (u *Uploader) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("audiocap-connection-test-%d.txt", time.Now().UnixNano())
	if u.cfg.Prefix != "" {
		key = path.Join(u.cfg.Prefix, key)
	}
	body := []byte("audiocap connection test")
	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return fmt.Errorf("upload test object: %w", err)
	}
	if _, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		u.logger.Warn("failed to delete test object", logging.String("key", key), logging.Error(err))
	}
	return nil
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
