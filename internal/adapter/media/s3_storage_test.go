package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func newTestStorage(client putObjectAPI, cfg S3Config) *S3Storage {
	s := newS3Storage(client, cfg)
	s.newKey = func() string { return "k1" }
	return s
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		photo   ports.Photo
		wantKey string
		wantURL string
		wantCT  string
	}{
		{
			name:    "aws url",
			cfg:     S3Config{Bucket: "proofs", Region: "ap-southeast-1", Prefix: "installations/"},
			photo:   ports.Photo{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
			wantKey: "installations/k1.jpg",
			wantURL: "https://proofs.s3.ap-southeast-1.amazonaws.com/installations/k1.jpg",
			wantCT:  "image/jpeg",
		},
		{
			name:    "custom endpoint",
			cfg:     S3Config{Bucket: "proofs", Region: "us-east-1", Endpoint: "http://localhost:9000/"},
			photo:   ports.Photo{Name: "side.PNG", ContentType: "image/png", Data: []byte("png")},
			wantKey: "k1.PNG",
			wantURL: "http://localhost:9000/proofs/k1.PNG",
			wantCT:  "image/png",
		},
		{
			name:    "cdn base url wins",
			cfg:     S3Config{Bucket: "proofs", Region: "us-east-1", Endpoint: "http://localhost:9000", PublicBaseURL: "https://cdn.example.com/"},
			photo:   ports.Photo{Name: "noext", Data: []byte("raw")},
			wantKey: "k1",
			wantURL: "https://cdn.example.com/k1",
			wantCT:  "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeS3{}
			s := newTestStorage(fake, tt.cfg)

			url, err := s.Upload(context.Background(), tt.photo)

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.cfg.Bucket, aws.ToString(fake.input.Bucket))
			assert.Equal(t, tt.wantKey, aws.ToString(fake.input.Key))
			assert.Equal(t, tt.wantCT, aws.ToString(fake.input.ContentType))
			assert.Equal(t, tt.photo.Data, fake.body)
		})
	}
}

func TestUpload_PutFails(t *testing.T) {
	s := newTestStorage(&fakeS3{err: errors.New("SlowDown")}, S3Config{Bucket: "proofs"})

	url, err := s.Upload(context.Background(), ports.Photo{Name: "a.jpg", Data: []byte("x")})

	assert.Empty(t, url)
	assert.ErrorContains(t, err, "s3 put k1.jpg")
}
