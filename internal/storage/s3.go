package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// S3 stores files in a bucket and returns their public URLs.
type S3 struct {
	client s3iface.S3API
	bucket string
	region string
}

// NewS3 uses the default AWS credential chain.
func NewS3(bucket, region string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3WithClient(s3.New(sess), bucket, region), nil
}

func NewS3WithClient(client s3iface.S3API, bucket, region string) *S3 {
	return &S3{client: client, bucket: bucket, region: region}
}

func (s *S3) baseURL() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

// Save prefixes the object name with a short random id so equal names never overwrite.
func (s *S3) Save(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	name := sanitize(filename)
	objectKey := path.Join(category, uuid.New().String()[:8]+"-"+name)

	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		body = strings.NewReader(string(data))
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		zap.L().Error("failed to upload to S3", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}
	return s.baseURL() + objectKey, nil
}

func (s *S3) Remove(ctx context.Context, publicURL string) error {
	objectKey := strings.TrimPrefix(publicURL, s.baseURL())
	if objectKey == publicURL {
		return fmt.Errorf("%q is not in bucket %s", publicURL, s.bucket)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		zap.L().Error("failed to delete from S3", zap.String("key", objectKey), zap.Error(err))
		return err
	}
	return nil
}
