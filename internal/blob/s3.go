package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config holds credentials and addressing for an S3-compatible store.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Store uploads objects to an S3-compatible bucket and serves them back
// through public path-style URLs.
type S3Store struct {
	client *s3.S3
	cfg    S3Config
}

// NewS3Store builds a store from static credentials.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &S3Store{client: s3.New(sess), cfg: cfg}, nil
}

// Upload puts the file at localPath into the bucket under the configured
// folder prefix. The staged file name is already unique per operation, so it
// doubles as the object name.
func (s *S3Store) Upload(ctx context.Context, localPath string, opts UploadOptions) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	key := opts.Folder + "/" + filepath.Base(localPath)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    aws.String("public-read"),
	}
	switch opts.Kind {
	case KindRaw:
		input.ContentType = aws.String("application/octet-stream")
		input.ContentDisposition = aws.String("attachment")
	default:
		if opts.ContentType != "" {
			input.ContentType = aws.String(opts.ContentType)
		}
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
}
