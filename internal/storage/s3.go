package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Publisher uploads to an S3-compatible bucket (AWS, R2, MinIO).
type S3Publisher struct {
	client *s3.Client
	loc    Location
}

// NewS3Publisher loads AWS configuration and builds the client.
func NewS3Publisher(ctx context.Context, loc Location, opts Options) (*S3Publisher, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	region := opts.Region
	if region == "" && opts.Endpoint != "" {
		region = "auto"
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Publisher{client: client, loc: loc}, nil
}

// Publish uploads localPath as <prefix>/<name>.
func (p *S3Publisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	key := p.loc.ObjectKey(name)
	dest := fmt.Sprintf("s3://%s/%s", p.loc.Bucket, key)

	f, err := os.Open(localPath)
	if err != nil {
		return "", &PublishError{Destination: dest, Message: "failed to open artifact", Cause: err}
	}
	defer func() { _ = f.Close() }()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.loc.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentTypePDF),
	})
	if err != nil {
		return "", &PublishError{Destination: dest, Message: "PutObject failed", Cause: err}
	}
	return dest, nil
}

// Close is a no-op; the S3 client holds no connections that need releasing.
func (p *S3Publisher) Close() error {
	return nil
}
