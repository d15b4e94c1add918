package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2026, time.March, 7, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "pushes/alice/2026/03/07/6ba7b810-9dad-11d1-80b4-00c04fd430c8.json", Key("alice", id, at))
}

func TestNop(t *testing.T) {
	key, err := Nop().Archive(context.Background(), "u", uuid.New(), []byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestS3Archiver_Archive(t *testing.T) {
	p := &fakePutter{}
	at := time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC)
	a := &S3Archiver{bucket: "snip", client: p, now: func() time.Time { return at }}
	id := uuid.New()

	key, err := a.Archive(context.Background(), "bob", id, []byte(`{"snippets":[]}`))
	require.NoError(t, err)

	assert.Equal(t, Key("bob", id, at), key)
	assert.Equal(t, "snip", aws.ToString(p.in.Bucket))
	assert.Equal(t, key, aws.ToString(p.in.Key))
	assert.Equal(t, "application/json", aws.ToString(p.in.ContentType))
	assert.Equal(t, `{"snippets":[]}`, string(p.body))
}

func TestS3Archiver_ArchiveError(t *testing.T) {
	a := &S3Archiver{bucket: "snip", client: &fakePutter{err: errors.New("denied")}, now: time.Now}

	key, err := a.Archive(context.Background(), "bob", uuid.New(), nil)
	require.Error(t, err)
	assert.Empty(t, key)
	assert.Contains(t, err.Error(), "denied")
}

func TestNewS3Archiver(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	p := &fakePutter{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&opts)
		}
		return p
	}

	a, err := NewS3Archiver(context.Background(), Options{
		Bucket:       "snip",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		RootUser:     "minio",
		RootPassword: "minio123",
	})
	require.NoError(t, err)
	assert.Same(t, p, a.client)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Archiver_Errors(t *testing.T) {
	_, err := NewS3Archiver(context.Background(), Options{})
	require.Error(t, err)

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err = NewS3Archiver(context.Background(), Options{Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config")
}
