package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DownloadLinkExpiry = 15 * time.Minute

// Store reads and writes export snapshots in one bucket.
type Store struct {
	client         *s3.Client
	bucket         string
	publicEndpoint string
}

func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// NewStore builds a Store from the AWS_* environment.
func NewStore(ctx context.Context) (*Store, error) {
	client, err := NewS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return NewStoreWithClient(client, util.GetEnv("AWS_BUCKET"), util.GetEnvString("AWS_PUBLIC_ENDPOINT", "")), nil
}

func NewStoreWithClient(client *s3.Client, bucket, publicEndpoint string) *Store {
	return &Store{client: client, bucket: bucket, publicEndpoint: publicEndpoint}
}

func (s *Store) PutJSON(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

// DownloadLink presigns a GET for key. When a public endpoint is configured
// the link is signed for that host and carries its path prefix.
func (s *Store) DownloadLink(ctx context.Context, key string) (string, error) {
	presignClient := s.client
	prefix := ""

	if s.publicEndpoint != "" {
		publicURL, err := url.Parse(s.publicEndpoint)
		if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
			return "", fmt.Errorf("invalid AWS_PUBLIC_ENDPOINT: %s", s.publicEndpoint)
		}
		prefix = strings.TrimSuffix(publicURL.Path, "/")
		publicBaseEndpoint := fmt.Sprintf("%s://%s", publicURL.Scheme, publicURL.Host)

		// The signature has to match the Host the browser will send.
		presignClient = s3.NewFromConfig(
			aws.Config{
				Region:      s.client.Options().Region,
				Credentials: s.client.Options().Credentials,
				HTTPClient:  s.client.Options().HTTPClient,
			},
			func(o *s3.Options) {
				o.BaseEndpoint = aws.String(publicBaseEndpoint)
				o.UsePathStyle = true
			},
		)
	}

	out, err := s3.NewPresignClient(presignClient).PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(DownloadLinkExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}

	if prefix == "" {
		return out.URL, nil
	}
	signedURL, err := url.Parse(out.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse presigned url: %w", err)
	}
	signedURL.Path = prefix + signedURL.Path
	return signedURL.String(), nil
}
