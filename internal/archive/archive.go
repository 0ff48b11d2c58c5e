// Package archive persists raw API payloads to S3 before any parsing or
// storage happens, so every load is replayable from the exact bytes received.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// keyPrefix roots every archived object under one bucket folder.
const keyPrefix = "raw"

// S3API is the subset of the S3 client used by Archiver.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Archiver writes raw payloads to an append-only S3 layout:
// raw/{series}/{YYYYMMDD_HHMMSS}.json. Keys are timestamped, so repeated
// loads of the same series never overwrite each other.
type Archiver struct {
	client S3API
	bucket string
	now    func() time.Time
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithS3Client sets a custom S3 client (useful for testing).
func WithS3Client(c S3API) ArchiverOption {
	return func(a *Archiver) { a.client = c }
}

// WithClock sets the timestamp source for generated keys.
func WithClock(now func() time.Time) ArchiverOption {
	return func(a *Archiver) { a.now = now }
}

// NewArchiver creates an S3-backed raw payload archiver.
func NewArchiver(bucket string, opts ...ArchiverOption) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name required")
	}
	a := &Archiver{
		bucket: bucket,
		now:    time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	if a.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		a.client = s3.NewFromConfig(cfg)
	}
	return a, nil
}

// Save archives one raw payload and returns the object key it was written to.
func (a *Archiver) Save(ctx context.Context, seriesID string, payload []byte) (string, error) {
	if seriesID == "" {
		return "", fmt.Errorf("series id is required")
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("payload is empty")
	}

	key := fmt.Sprintf("%s/%s/%s.json", keyPrefix, seriesID, a.now().UTC().Format("20060102_150405"))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("putting raw payload to S3: %w", err)
	}
	return key, nil
}

// List returns the archived object keys for one series, or for every series
// when seriesID is empty. Keys come back in S3 list order, which sorts the
// timestamped names chronologically within a series.
func (a *Archiver) List(ctx context.Context, seriesID string) ([]string, error) {
	prefix := keyPrefix + "/"
	if seriesID != "" {
		prefix = fmt.Sprintf("%s/%s/", keyPrefix, seriesID)
	}

	var keys []string
	var token *string
	for {
		out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing archived payloads: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

// Fetch reads one archived payload back by key.
func (a *Archiver) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting archived payload %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading archived payload %s: %w", key, err)
	}
	return data, nil
}
