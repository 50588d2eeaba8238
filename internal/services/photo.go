package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLExpiry = 5 * time.Minute

// Photo upload kinds; each gets its own key prefix in the bucket.
const (
	PhotoKindChecklist   = "checklist"
	PhotoKindMaintenance = "maintenance"
)

// PhotoService issues pre-signed S3 upload URLs for checklist and
// maintenance photos. Clients upload directly to S3 and attach the
// returned public URL to the entry or request.
type PhotoService struct {
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewPhotoService creates a new photo service
func NewPhotoService(region, bucket, accessKey, secretKey, endpoint string) (*PhotoService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoService{
		s3Client: s3Client,
		bucket:   bucket,
		region:   region,
	}, nil
}

// UploadResponse carries a pre-signed URL and the public URL the photo
// will have once uploaded.
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignUpload generates a pre-signed PUT URL for a photo of the given
// kind. Key layout: {kind}/{uuid}.jpg.
func (s *PhotoService) PresignUpload(ctx context.Context, kind, contentType string) (*UploadResponse, error) {
	if kind != PhotoKindChecklist && kind != PhotoKindMaintenance {
		return nil, fmt.Errorf("unknown photo kind %q", kind)
	}

	key := fmt.Sprintf("%s/%s.jpg", kind, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	photoURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)

	return &UploadResponse{
		UploadURL: request.URL,
		PhotoURL:  photoURL,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}
