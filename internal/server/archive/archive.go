// Package archive stores the raw change set of every accepted push in
// S3-compatible object storage. Archiving is best effort: the caller logs a
// failure and still acknowledges the push.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archiver stores payload under a key derived from userID and pushID and
// returns that key.
type Archiver interface {
	Archive(ctx context.Context, userID string, pushID uuid.UUID, payload []byte) (string, error)
}

// Key is the object key of a push archived at t.
func Key(userID string, pushID uuid.UUID, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("pushes/%s/%04d/%02d/%02d/%s.json", userID, t.Year(), int(t.Month()), t.Day(), pushID)
}

type nop struct{}

func (nop) Archive(context.Context, string, uuid.UUID, []byte) (string, error) { return "", nil }

// Nop returns an Archiver that stores nothing and returns an empty key.
func Nop() Archiver { return nop{} }

// Options configures the S3 archiver. RootUser and RootPassword are the
// static access key pair (MinIO root credentials in development).
type Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	RootUser     string
	RootPassword string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Archiver struct {
	bucket string
	client objectPutter
	now    func() time.Time
}

// NewS3Archiver builds an archiver that writes to opts.Bucket.
func NewS3Archiver(ctx context.Context, opts Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, errors.New("archive: bucket is required")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.RootUser,
			opts.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Archiver{bucket: opts.Bucket, client: client, now: time.Now}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, userID string, pushID uuid.UUID, payload []byte) (string, error) {
	key := Key(userID, pushID, a.now())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return key, nil
}
