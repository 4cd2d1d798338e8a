// Package digitalocean stores guild documents in DigitalOcean Spaces.
package digitalocean

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/fuad-daoud/disma/logger/dlog"
)

// URLScheme prefixes document locations read from Spaces, as in
// "spaces://guilds/123/layout.yaml".
const URLScheme = "spaces://"

var (
	ErrNotFound      = errors.New("object not found")
	ErrNotConfigured = errors.New("spaces are not configured")
)

type Config struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
}

func (c Config) Configured() bool {
	return c.Key != "" && c.Secret != "" && c.Bucket != ""
}

type Spaces struct {
	client s3iface.S3API
	bucket string
	prefix string
	now    func() time.Time
}

func New(cfg Config) (*Spaces, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.Key, cfg.Secret, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(false),
		Region:           aws.String(cfg.Region),
	}
	newSession, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("could not create spaces session: %w", err)
	}
	return newSpaces(s3.New(newSession), cfg), nil
}

func newSpaces(client s3iface.S3API, cfg Config) *Spaces {
	return &Spaces{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/"), now: time.Now}
}

// SnapshotKey is where a document exported from guildID is stored.
func (s *Spaces) SnapshotKey(guildID, extension string) string {
	name := s.now().UTC().Format("20060102T150405Z") + "." + extension
	return path.Join(s.prefix, guildID, name)
}

// UploadSnapshot stores an exported document and returns its key.
func (s *Spaces) UploadSnapshot(ctx context.Context, guildID, extension string, data []byte) (string, error) {
	key := s.SnapshotKey(guildID, extension)
	object := s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
		ACL:    aws.String("private"),
		Metadata: map[string]*string{
			"guild": aws.String(guildID),
		},
	}
	if _, err := s.client.PutObjectWithContext(ctx, &object); err != nil {
		return "", fmt.Errorf("could not upload %s: %w", key, err)
	}
	dlog.Info("Uploaded snapshot", "bucket", s.bucket, "key", key, "bytes", len(data))
	return key, nil
}

// Download reads an object, key being relative to the bucket.
func (s *Spaces) Download(ctx context.Context, key string) ([]byte, error) {
	input := s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(key, URLScheme)),
	}
	object, err := s.client.GetObjectWithContext(ctx, &input)
	if err != nil {
		var requestFailure awserr.RequestFailure
		if errors.As(err, &requestFailure) && requestFailure.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("could not download %s: %w", key, err)
	}
	defer object.Body.Close()
	return io.ReadAll(object.Body)
}
