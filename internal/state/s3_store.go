package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/profile"
)

// s3Store persists manifests to an S3 bucket, for teams that share
// deployment artifacts out of band.
type s3Store struct {
	bucket string
	key    string
	client *s3.Client
}

func newS3Store(cfg *profile.StoreConfig) (Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 manifest store requires a bucket")
	}

	key := cfg.Key
	if key == "" {
		key = "worldforge/manifest.json"
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &s3Store{
		bucket: cfg.Bucket,
		key:    key,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

func (s *s3Store) Write(ctx context.Context, m *diff.Manifest) error {
	data, err := MarshalManifest(m)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write manifest to s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *s3Store) Read(ctx context.Context) (*diff.Manifest, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest from s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	var m diff.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
