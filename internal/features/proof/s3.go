package proof

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/utils/dataurl"
)

// ObjectAPI is the part of *s3.Client the store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client ObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Store uploads images to bucket under prefix/YYYY/MM/DD/ and records
// an s3://bucket/key reference.
func NewS3Store(client ObjectAPI, bucket, prefix string) Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// NewS3Client builds an S3 client from the proof settings. A custom endpoint
// (R2, MinIO) switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Proof.Region),
	}
	if cfg.Proof.AccessKey != "" && cfg.Proof.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Proof.AccessKey, cfg.Proof.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Proof.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Proof.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

func (s *s3Store) Put(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}

	parsed, err := dataurl.Parse(image)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	key := path.Join(s.prefix, s.now().UTC().Format("2006/01/02"), id.String()+dataurl.Extension(parsed.MediaType))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(parsed.Data),
		ContentLength: aws.Int64(int64(len(parsed.Data))),
		ContentType:   aws.String(parsed.MediaType),
	})
	if err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to upload proof image")
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	logger.Debug().Str("key", key).Int("bytes", len(parsed.Data)).Msg("Proof image uploaded")
	return s.ref(key), nil
}

func (s *s3Store) ref(key string) string {
	return "s3://" + s.bucket + "/" + key
}

// Discard deletes the object behind ref. Empty refs and refs to other
// buckets are ignored.
func (s *s3Store) Discard(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.ref(""))
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete proof %s: %w", key, err)
	}
	logger.Debug().Str("key", key).Msg("Proof image discarded")
	return nil
}
