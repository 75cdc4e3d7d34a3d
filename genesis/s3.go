package genesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Source fetches the genesis descriptor from Amazon S3 or a compatible
// object store. Genesis files are published by the deployment pipeline and
// read-only to nodes, so anonymous read access is the common case.
type S3Source struct {
	client      *s3.S3
	bucketName  string
	key         string
	log         *slog.Logger
	locationURI string
}

// NewS3Source creates an S3-backed genesis source. accessKey and secretKey
// may be empty for publicly readable buckets.
func NewS3Source(bucketName, key, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Source, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, key, region)
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Source{
		client:      s3.New(sess),
		bucketName:  bucketName,
		key:         strings.TrimPrefix(key, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

func newS3SourceFromURL(u *url.URL, log *slog.Logger) (*S3Source, error) {
	q := u.Query()
	region := q.Get("region")
	if region == "" {
		return nil, fmt.Errorf("s3 genesis source requires a region parameter")
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Source(u.Host, u.Path, region, q.Get("endpoint"), accessKey, secretKey, log)
}

// Fetch retrieves the genesis object.
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()

	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get genesis object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis object body: %w", err)
	}

	s.log.Debug("Fetched genesis descriptor from S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", s.key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Location returns the URI that identifies this source.
func (s *S3Source) Location() string {
	return s.locationURI
}
