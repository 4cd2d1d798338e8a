package digitalocean

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	put     []*s3.PutObjectInput
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = body
	f.put = append(f.put, input)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*input.Key]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "missing", nil), http.StatusNotFound, "req")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func TestUploadAndDownload(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	spaces := newSpaces(fake, Config{Bucket: "disma", Prefix: "/snapshots/"})
	spaces.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	key, err := spaces.UploadSnapshot(ctx, "123", "yaml", []byte("roles: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "snapshots/123/20240301T123000Z.yaml", key)
	require.Len(t, fake.put, 1)
	assert.Equal(t, "disma", *fake.put[0].Bucket)
	assert.Equal(t, "private", *fake.put[0].ACL)
	assert.Equal(t, "123", *fake.put[0].Metadata["guild"])

	data, err := spaces.Download(ctx, URLScheme+key)
	require.NoError(t, err)
	assert.Equal(t, "roles: {}\n", string(data))

	_, err = spaces.Download(ctx, "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRequiresConfiguration(t *testing.T) {
	_, err := New(Config{Key: "k", Secret: "s"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
