// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package media hands out presigned upload slots for user avatars.

The API never proxies image bytes. The client asks for an upload slot,
receives a short-lived presigned PUT URL, uploads directly to object
storage, and stores the returned public URL on the profile.
*/
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/pkg/uuidv7"
)

// # Contracts & Types

// UploadURLExpiry is the lifetime of a presigned PUT URL. Long enough for a
// mobile upload on a slow connection, short enough to limit replay.
const UploadURLExpiry = 15 * time.Minute

// avatarExtensions maps the accepted image content types to object key
// extensions. Anything else is rejected before touching object storage.
var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Presigner signs a single PUT for an object key.
type Presigner interface {
	PresignPut(context context.Context, key, contentType string) (string, error)
}

// Upload is a granted avatar upload slot.
type Upload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// Service implements avatar upload slot issuance.
type Service struct {
	presigner     Presigner
	publicBaseURL string
}

// NewService constructs the media service.
//
// publicBaseURL is the CDN or bucket host that serves uploaded objects; the
// public URL of an object is publicBaseURL joined with its key.
func NewService(presigner Presigner, publicBaseURL string) *Service {
	return &Service{
		presigner:     presigner,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// # Upload Slots

/*
NewAvatarUpload issues one presigned avatar upload slot.

Description: Validates the image content type, mints a time-sortable object
key under avatars/, and signs a PUT for it.

Parameters:
  - context: context.Context
  - contentType: string

Returns:
  - *Upload: Presigned slot with the object's future public URL
  - err: ValidationError for unsupported types, or signing failures
*/
func (service *Service) NewAvatarUpload(context context.Context, contentType string) (*Upload, error) {
	extension, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "content_type",
			Message: "Must be one of image/jpeg, image/png, image/webp, image/gif",
		})
	}

	key := "avatars/" + uuidv7.New() + extension

	uploadURL, err := service.presigner.PresignPut(context, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("media_service_presign_failed: %w", err)
	}

	return &Upload{
		UploadURL: uploadURL,
		PublicURL: service.publicBaseURL + "/" + key,
		Key:       key,
		ExpiresIn: int(UploadURLExpiry / time.Second),
	}, nil
}

// # S3 Presigner

// S3Config carries object storage connection settings.
type S3Config struct {
	Bucket      string
	Region      string
	Endpoint    string // empty for AWS proper; set for MinIO-compatible stores
	AccessKeyID string
	SecretKey   string
}

// S3Presigner implements [Presigner] on aws-sdk-go-v2.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
}

// NewS3Presigner builds the presign client once at startup.
func NewS3Presigner(context context.Context, cfg S3Config) (*S3Presigner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("media_s3_config_failed: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO-compatible endpoints.
			options.UsePathStyle = true
		}
	})

	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
	}, nil
}

// PresignPut signs a PUT for the given key, binding the content type into
// the signature.
func (presigner *S3Presigner) PresignPut(context context.Context, key, contentType string) (string, error) {
	request, err := presigner.client.PresignPutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(presigner.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return "", err
	}

	return request.URL, nil
}
