// internal/storage/s3.go
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Driver implements Driver over an S3-compatible object store.
type S3Driver struct {
	bucket string
	client *s3.Client
	logger *zap.Logger
}

// S3Config configures NewS3Driver.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewS3Driver builds an S3Driver bound to cfg.Bucket.
func NewS3Driver(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Driver, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(creds),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Driver{bucket: cfg.Bucket, client: client, logger: logger}, nil
}

// Open reads an object, returning (nil, nil) if it doesn't exist.
func (d *S3Driver) Open(ctx context.Context, path string) ([]byte, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nske *types.NoSuchKey
		if errors.As(err, &nske) {
			return nil, nil
		}
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return data, nil
}

// Upload writes or overwrites an object.
func (d *S3Driver) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = ResolveContentType(path, data)
	}

	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// Delete removes an object; S3 deletes are already idempotent.
func (d *S3Driver) Delete(ctx context.Context, path string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object is present.
func (d *S3Driver) Exists(ctx context.Context, path string) (bool, error) {
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", path, err)
	}
	return true, nil
}

// List enumerates blobs under prefix using S3's delimiter-based listing.
func (d *S3Driver) List(ctx context.Context, prefix string, filter ListFilter) ([]Blob, error) {
	out, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
	}

	blobs := make([]Blob, 0, len(out.Contents)+len(out.CommonPrefixes))
	if !filter.FilesOnly {
		for _, cp := range out.CommonPrefixes {
			blobs = append(blobs, Blob{Kind: BlobDirectory, Path: aws.ToString(cp.Prefix)})
		}
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if filter.Suffix != "" && !hasSuffix(key, filter.Suffix) {
			continue
		}
		blobs = append(blobs, Blob{
			Kind: BlobFile,
			Name: basename(key),
			Path: key,
			Size: aws.ToInt64(obj.Size),
		})
	}

	return blobs, nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
