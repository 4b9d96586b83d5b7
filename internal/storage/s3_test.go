package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/wabulk-backend/internal/config"
)

type fakeS3 struct {
	puts    map[string]string
	types   map[string]string
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newFakeStore() (*S3Store, *fakeS3) {
	f := &fakeS3{puts: map[string]string{}, types: map[string]string{}}
	return &S3Store{client: f, bucket: "media", publicBaseURL: "https://proj.supabase.co/storage/v1/object/public/media"}, f
}

func TestS3Store_Put(t *testing.T) {
	s, f := newFakeStore()

	u, err := s.Put(context.Background(), "u1/abc/promo banner.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/media/u1/abc/promo%20banner.png", u)
	assert.Equal(t, "png-bytes", f.puts["u1/abc/promo banner.png"])
	assert.Equal(t, "image/png", f.types["u1/abc/promo banner.png"])
}

func TestS3Store_PutError(t *testing.T) {
	s, f := newFakeStore()
	f.err = errors.New("access denied")

	_, err := s.Put(context.Background(), "k", "text/plain", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Store_Delete(t *testing.T) {
	s, f := newFakeStore()
	require.NoError(t, s.Delete(context.Background(), "u1/abc/a.pdf"))
	assert.Equal(t, []string{"u1/abc/a.pdf"}, f.deleted)
}

func TestDefaultPublicBase(t *testing.T) {
	assert.Equal(t, "https://media.s3.sa-east-1.amazonaws.com", defaultPublicBase("", "media", "sa-east-1"))
	assert.Equal(t, "http://localhost:9000/media", defaultPublicBase("http://localhost:9000/", "media", "us-east-1"))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.StorageConfig{})
	assert.Error(t, err)
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	s, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:       "media",
		Region:       "sa-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/media/a.png", s.PublicURL("a.png"))
}
