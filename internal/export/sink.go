package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const gifContentType = "image/gif"

// Sink stores encoded files and reports where each one went.
type Sink interface {
	Put(ctx context.Context, name string, body []byte) (string, error)
}

// FileSink writes into a local directory.
type FileSink struct {
	Dir string
}

func (s FileSink) Put(_ context.Context, name string, body []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, body, 0644); err != nil {
		return "", err
	}
	return p, nil
}

// PutObjectAPI is the subset of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads to Bucket under Prefix.
type S3Sink struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

// NewS3Sink builds a client from the default AWS credential chain. An empty
// region defers to the environment.
func NewS3Sink(ctx context.Context, bucket, prefix, region string) (*S3Sink, error) {
	var loaders []func(*awsconfig.LoadOptions) error
	if region != "" {
		loaders = append(loaders, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}
	return &S3Sink{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix}, nil
}

func (s *S3Sink) Put(ctx context.Context, name string, body []byte) (string, error) {
	key := path.Join(s.Prefix, name)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(gifContentType),
	})
	if err != nil {
		return "", fmt.Errorf("export: put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return "s3://" + s.Bucket + "/" + key, nil
}

// ParseS3 splits s3://bucket/key into its parts. ok is false for anything else.
func ParseS3(dest string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(dest, "s3://") {
		return "", "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), true
}

// OpenSink returns an S3Sink for s3://bucket/prefix destinations and a FileSink
// for anything else.
func OpenSink(ctx context.Context, dest, region string) (Sink, error) {
	if bucket, prefix, ok := ParseS3(dest); ok {
		return NewS3Sink(ctx, bucket, prefix, region)
	}
	return FileSink{Dir: dest}, nil
}
