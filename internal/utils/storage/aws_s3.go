package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"kalorikollen/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

// AwsS3 keeps meal photos in a bucket.
type AwsS3 struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewAwsS3 returns nil when no bucket is configured.
func NewAwsS3() *AwsS3 {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	region := utils.GetConfig("AWS_S3_REGION")
	if bucket == "" || region == "" {
		log.Info("AWS_S3_BUCKET not set, meal photos will not be stored")
		return nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		log.Errorf("error loading aws config: %v", err)
		return nil
	}
	return NewAwsS3WithClient(s3.NewFromConfig(cfg), bucket, region, "")
}

// NewAwsS3WithClient is used when the client is built elsewhere. baseURL
// overrides the public URL prefix; empty means the virtual-hosted S3 URL.
func NewAwsS3WithClient(client *s3.Client, bucket, region, baseURL string) *AwsS3 {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &AwsS3{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *AwsS3) UploadBytes(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *AwsS3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *AwsS3) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL is the inverse of PublicURL. ok is false for URLs outside the
// bucket.
func (s *AwsS3) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
