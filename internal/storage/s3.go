package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"courseai/internal/config"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewS3Client builds a path-style client for an S3-compatible endpoint.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading S3 config: %w", err)
	}
	return s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	}), nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}

const failedGenerationPrefix = "generation-failures"

// OutputArchive writes rejected model output to a bucket as JSON objects.
type OutputArchive struct {
	client *s3.Client
	bucket string
}

func NewOutputArchive(client *s3.Client, bucket string) *OutputArchive {
	return &OutputArchive{client: client, bucket: bucket}
}

// Archive stores failed and returns the object key.
func (a *OutputArchive) Archive(ctx context.Context, failed model.FailedGeneration) (string, error) {
	body, err := json.Marshal(failed)
	if err != nil {
		return "", fmt.Errorf("encoding failed generation: %w", err)
	}
	key := fmt.Sprintf("%s/%s/%s.json", failedGenerationPrefix, failed.FailedAt.Format("2006/01/02"), uuid.NewString())

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("putting %s: %s: %s", key, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return "", fmt.Errorf("putting %s: %w", key, err)
	}
	return key, nil
}

// NewArchiveFromConfig returns the archive for rejected model output, or a
// nil archive when no bucket is configured.
func NewArchiveFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.OutputArchive, error) {
	if !cfg.S3Enabled() {
		logger.Info().Msg("S3 not configured, rejected model output will not be archived")
		return nil, nil
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bucket", cfg.S3Bucket).Msg("Archiving rejected model output to S3")
	return NewOutputArchive(client, cfg.S3Bucket), nil
}
