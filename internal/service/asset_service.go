package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"

	config "github.com/fbuehler/autopost-api/configs"
)

var ErrNotVideo = errors.New("uploaded file is not a video")

// AssetService parks inbound video files in R2 for the duration of a
// dispatch, replacing a local temp directory. Assets are deleted once the
// publishing call returns; anything left behind after a crash can be
// re-dispatched or swept manually.
type AssetService struct {
	cfg    config.Config
	client *s3.Client
}

func NewAssetService(cfg config.Config) (*AssetService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID))
	})

	return &AssetService{cfg: cfg, client: client}, nil
}

// Store validates that data is a video and writes it under key. The
// detected content type is returned.
func (a *AssetService) Store(ctx context.Context, key string, data []byte) (string, error) {
	if !filetype.IsVideo(data) {
		return "", ErrNotVideo
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return kind.MIME.Value, nil
}

func (a *AssetService) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.cfg.R2.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
