// Package pictures stores profile pictures in an S3-compatible bucket.
// Clients upload with a presigned PUT URL; profiles keep the public URL.
package pictures

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const keyPrefix = "user-profile-pictures/"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

type Options struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	BaseEndpoint  string
	PublicBaseURL string
	UploadExpiry  time.Duration
}

type Store struct {
	opts Options
}

func New(opts Options) *Store {
	if opts.UploadExpiry == 0 {
		opts.UploadExpiry = 15 * time.Minute
	}
	return &Store{opts: opts}
}

// ObjectKey returns the bucket key of userID's picture.
func ObjectKey(userID string) string {
	return keyPrefix + userID + ".jpg"
}

func (s *Store) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// PublicURL is the address the profile stores for userID's picture.
func (s *Store) PublicURL(userID string) string {
	base := s.opts.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.opts.BaseEndpoint, "/") + "/" + s.opts.Bucket
	}
	return strings.TrimRight(base, "/") + "/" + ObjectKey(userID)
}

// UploadURL presigns a PUT of userID's picture and returns it together with
// the public URL the object will have.
func (s *Store) UploadURL(ctx context.Context, userID string) (string, string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.opts.Bucket
	key := ObjectKey(userID)
	req, err := presignPutObject(newS3PresignClient(c), ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("image/jpeg"),
	}, s3.WithPresignExpires(s.opts.UploadExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, s.PublicURL(userID), nil
}

// Delete removes userID's picture. Deleting a missing object succeeds.
func (s *Store) Delete(ctx context.Context, userID string) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}
	bucket := s.opts.Bucket
	key := ObjectKey(userID)
	if err := deleteObject(c, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
