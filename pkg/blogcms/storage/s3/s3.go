// Package s3 stores uploaded assets in an S3-compatible bucket. The public
// reference is the key joined to a URL prefix, typically a CDN or reverse
// proxy path that fronts the bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// Config options for the S3 asset store
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	URLPrefix       string // Public path prefix assets are served under
}

// Store is an S3-compatible implementation of the blogcms.AssetStore
// interface
type Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	urlPrefix string
}

// New creates a new S3-compatible asset store
func New(config Config) (*Store, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	if config.URLPrefix == "" {
		config.URLPrefix = "/uploads"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    config.Bucket,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// Save uploads the reader's content under key and returns its public
// reference.
func (s *Store) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return path.Join(s.urlPrefix, key), nil
}

// Delete removes the object for ref. S3 reports success for missing keys,
// which already matches the tolerant delete the lifecycle manager needs.
func (s *Store) Delete(ctx context.Context, ref string) error {
	key, err := s.objectKey(ref)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// Exists reports whether an object exists for ref.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := s.objectKey(ref)
	if err != nil {
		return false, err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}

	return true, nil
}

// Open returns the object content for ref.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	key, err := s.objectKey(ref)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blogcms.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return result.Body, nil
}

// objectKey resolves a public reference back to a bucket key.
func (s *Store) objectKey(ref string) (string, error) {
	key := strings.TrimPrefix(ref, s.urlPrefix+"/")
	if key == ref || key == "" {
		return "", fmt.Errorf("reference %q is outside prefix %s", ref, s.urlPrefix)
	}
	return key, nil
}

// isNotFound classifies S3 "no such object" errors across the concrete type
// and the generic API error code (MinIO compatibility).
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
