// Package images hands out presigned S3 upload URLs for class pictures.
package images

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadExpiry is how long a presigned PUT stays valid.
const UploadExpiry = 15 * time.Minute

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // S3-compatible endpoint such as MinIO; empty means AWS
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

type Presigner struct {
	client *s3.PresignClient
	cfg    Config
}

func NewPresigner(ctx context.Context, cfg Config) (*Presigner, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Presigner{client: s3.NewPresignClient(client), cfg: cfg}, nil
}

// PresignUpload returns a URL the client can PUT the image to, and the URL the
// object will be readable at afterwards.
func (p *Presigner) PresignUpload(ctx context.Context, key, contentType string) (string, string, error) {
	request, err := p.client.PresignPutObject(ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(p.cfg.Bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		},
		func(opts *s3.PresignOptions) {
			opts.Expires = UploadExpiry
		},
	)
	if err != nil {
		return "", "", fmt.Errorf("presign put object: %w", err)
	}
	return request.URL, p.PublicURL(key), nil
}

// PublicURL is the plain object URL for key.
func (p *Presigner) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()

	if p.cfg.Endpoint != "" {
		base := strings.TrimRight(p.cfg.Endpoint, "/")
		if p.cfg.UsePathStyle {
			return fmt.Sprintf("%s/%s/%s", base, p.cfg.Bucket, escaped)
		}
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			u.Host = p.cfg.Bucket + "." + u.Host
			return u.String() + "/" + escaped
		}
		return fmt.Sprintf("%s/%s/%s", base, p.cfg.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, escaped)
}
