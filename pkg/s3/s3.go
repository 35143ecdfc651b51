package s3

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

// ItfS3 archives inspection photos to an S3 bucket. Archiving is best-effort;
// the pipeline only logs the returned location.
type ItfS3 interface {
	Available() bool
	ArchivePhoto(localPath string) (string, error)
}

type s3Client struct {
	session    *session.Session
	bucketName string
	log        *logrus.Logger
}

func New(log *logrus.Logger) (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return &s3Client{log: log}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &s3Client{
		session:    sess,
		bucketName: bucket,
		log:        log,
	}, nil
}

func (s *s3Client) Available() bool {
	return s.session != nil && s.bucketName != ""
}

func (s *s3Client) ArchivePhoto(localPath string) (string, error) {
	if !s.Available() {
		return "", errors.New("s3 archive is not configured")
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			s.log.Errorf("Failed to close photo file: %v", err)
		}
	}(src)

	uploader := s3manager.NewUploader(s.session)

	key := fmt.Sprintf("inspections/%s", filepath.Base(localPath))

	output, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   src,
	})
	if err != nil {
		return "", err
	}

	return output.Location, nil
}
