package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Storage
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage implements Store on Amazon S3 or an S3-compatible endpoint
type S3Storage struct {
	client S3API
}

// NewS3Storage wraps an existing S3 client
func NewS3Storage(client S3API) *S3Storage {
	return &S3Storage{client: client}
}

// NewS3StorageFromEnv loads AWS configuration, honouring a custom endpoint (e.g. LocalStack)
func NewS3StorageFromEnv(ctx context.Context, region, endpoint string) (*S3Storage, error) {
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // localstack/dev friendliness
		}
	})
	return NewS3Storage(client), nil
}

// GetReader streams the object body
func (s *S3Storage) GetReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// Exists reports whether HeadObject finds the object
func (s *S3Storage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.head(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetMetadata returns size, content type, etag and lowercased user metadata
func (s *S3Storage) GetMetadata(ctx context.Context, bucket, key string) (*Metadata, error) {
	ho, err := s.head(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	m := &Metadata{
		Custom: make(map[string]string, len(ho.Metadata)),
	}
	if ho.ContentLength != nil {
		m.Size = *ho.ContentLength
	}
	if ho.ETag != nil {
		m.ETag = strings.Trim(*ho.ETag, "\"")
	}
	if ho.ContentType != nil {
		m.ContentType = strings.ToLower(*ho.ContentType)
	}
	// Normalize user metadata keys to lowercase
	for k, v := range ho.Metadata {
		m.Custom[strings.ToLower(k)] = v
	}
	return m, nil
}

// Put uploads the object; S3 acknowledges only after the write is durable
func (s *S3Storage) Put(ctx context.Context, bucket, key string, r io.Reader, meta Metadata) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     r,
		Metadata: meta.Custom,
	}
	if meta.ContentType != "" {
		input.ContentType = aws.String(meta.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// URI returns an s3:// location
func (s *S3Storage) URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

func (s *S3Storage) head(ctx context.Context, bucket, key string) (*s3.HeadObjectOutput, error) {
	ho, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	return ho, nil
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
