package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService mirrors card images into DigitalOcean Spaces so minted NFTs
// do not depend on the upstream CDN staying alive. When disabled it passes
// source URLs through untouched.
type SpacesService struct {
	client   *s3.Client
	http     *http.Client
	bucket   string
	region   string
	CardRoot string
	enabled  bool
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, cardRoot string, enabled bool) (*SpacesService, error) {
	if !enabled {
		return &SpacesService{enabled: false}, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		http:     &http.Client{Timeout: 30 * time.Second},
		bucket:   bucket,
		region:   region,
		CardRoot: strings.TrimPrefix(cardRoot, "/"),
		enabled:  true,
	}, nil
}

func (s *SpacesService) Enabled() bool {
	return s.enabled
}

// MirrorCardImage downloads the source image and uploads it under
// CardRoot/<cardID>.png, returning the public URL of the copy. On any
// failure the source URL is returned so minting never blocks on the mirror.
func (s *SpacesService) MirrorCardImage(ctx context.Context, cardID, sourceURL string) string {
	if !s.enabled || sourceURL == "" {
		return sourceURL
	}

	key := fmt.Sprintf("%s/%s.png", s.CardRoot, cardID)

	body, contentType, err := s.download(ctx, sourceURL)
	if err != nil {
		slog.Warn("Failed to mirror card image, keeping source URL",
			slog.String("type", "sys"),
			slog.String("card_id", cardID),
			slog.Any("error", err),
		)
		return sourceURL
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
		ACL:         "public-read",
	})
	if err != nil {
		slog.Warn("Failed to upload card image, keeping source URL",
			slog.String("type", "sys"),
			slog.String("card_id", cardID),
			slog.Any("error", err),
		)
		return sourceURL
	}

	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}

// DeleteCardImage removes a mirrored image, used when minting is rolled
// back after an upload already happened.
func (s *SpacesService) DeleteCardImage(ctx context.Context, cardID string) error {
	if !s.enabled {
		return nil
	}
	key := fmt.Sprintf("%s/%s.png", s.CardRoot, cardID)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return body, contentType, nil
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}

func (s *SpacesService) GetRegion() string {
	return s.region
}
