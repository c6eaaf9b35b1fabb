package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	sc "github.com/echosphere/echosphere/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

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
)

// Upload kinds mapping to key prefixes in the bucket.
const (
	UploadKindPin    = "pin"
	UploadKindAvatar = "avatar"
)

const presignValidity = 15 * time.Minute

// uploadExtensions doubles as the content-type allowlist: pins carry audio,
// avatars carry images.
var uploadExtensions = map[string]map[string]string{
	UploadKindPin: {
		"audio/webm": ".webm",
		"audio/mpeg": ".mp3",
		"audio/mp4":  ".m4a",
		"audio/ogg":  ".ogg",
		"audio/wav":  ".wav",
	},
	UploadKindAvatar: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	},
}

// StorageService hands out presigned PUT URLs so clients upload audio
// directly to object storage without the blob crossing this server.
type StorageService struct {
	config *sc.Config
}

func NewStorageService(cfg *sc.Config) *StorageService {
	return &StorageService{config: cfg}
}

func (s *StorageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func storageKey(kind, contentType string) (string, error) {
	exts, ok := uploadExtensions[kind]
	if !ok {
		return "", common.ErrorValidation
	}
	ext, ok := exts[contentType]
	if !ok {
		return "", common.ErrorValidation
	}
	return fmt.Sprintf("%ss/%v%s", kind, uuid.New(), ext), nil
}

// PresignUpload returns a presigned PUT URL for a fresh object key together
// with the public URL the stored object will be reachable at. The content
// type is part of the signature, so the upload must match it.
func (s *StorageService) PresignUpload(ctx context.Context, kind, contentType string) (uploadURL string, publicURL string, err error) {
	key, err := storageKey(kind, contentType)
	if err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	base := strings.TrimSuffix(s.config.S3BaseEndpoint, "/")
	publicURL = fmt.Sprintf("%s/%s/%s", base, bucket, key)
	return req.URL, publicURL, nil
}
