package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
)

const jsonExt = ".json"

// s3API is the subset of *s3.Client used by S3Client.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config locates the bucket holding the documents.
type S3Config struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// S3Client stores documents as JSON objects. Read-modify-write updates of a
// user document are not atomic; the engines serialize their own writes.
type S3Client struct {
	api    s3API
	bucket string
}

var _ Client = (*S3Client)(nil)

func NewS3Client(ctx context.Context, c S3Config) (*S3Client, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", common.ErrRemoteSync)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", common.ErrRemoteSync, err)
	}

	api := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	})

	return &S3Client{api: api, bucket: c.Bucket}, nil
}

func userKey(userID string) string {
	return documents.UserPath(userID) + jsonExt
}

func favoriteKey(userID, movieID string) string {
	return documents.FavoritePath(userID, movieID) + jsonExt
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (c *S3Client) mapError(op string, err error) error {
	if isNotFound(err) {
		return common.ErrorNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", common.ErrRemoteSync, op, err)
}

func (c *S3Client) getJSON(ctx context.Context, key string, v any) error {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return c.mapError("get "+key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return c.mapError("read "+key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", common.ErrRemoteSync, key, err)
	}
	return nil
}

func (c *S3Client) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", common.ErrRemoteSync, key, err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return c.mapError("put "+key, err)
	}
	return nil
}

func (c *S3Client) GetUser(ctx context.Context, userID string) (*documents.UserDocument, error) {
	var doc documents.UserDocument
	if err := c.getJSON(ctx, userKey(userID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// loadOrNew returns the stored user document or a fresh one.
func (c *S3Client) loadOrNew(ctx context.Context, userID string) (*documents.UserDocument, error) {
	doc, err := c.GetUser(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return &documents.UserDocument{Profile: documents.Profile{UserID: userID}}, nil
	}
	return doc, err
}

func (c *S3Client) MergeUser(ctx context.Context, p documents.Profile) error {
	doc, err := c.loadOrNew(ctx, p.UserID)
	if err != nil {
		return err
	}
	doc.Profile.Overlay(p)
	return c.putJSON(ctx, userKey(p.UserID), doc)
}

func (c *S3Client) SetActivityLog(ctx context.Context, userID string, log documents.ActivityLog) error {
	doc, err := c.loadOrNew(ctx, userID)
	if err != nil {
		return err
	}
	doc.ActivityLog = log
	return c.putJSON(ctx, userKey(userID), doc)
}

func (c *S3Client) PutFavorite(ctx context.Context, userID string, f documents.FavoriteDocument) error {
	return c.putJSON(ctx, favoriteKey(userID, f.ID), f)
}

func (c *S3Client) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(favoriteKey(userID, movieID)),
	})
	if err != nil && !isNotFound(err) {
		return c.mapError("delete favorite", err)
	}
	return nil
}

func (c *S3Client) ListFavorites(ctx context.Context, userID string) ([]documents.FavoriteDocument, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(documents.FavoritesPath(userID) + "/"),
	}

	result := make([]documents.FavoriteDocument, 0)
	for {
		output, err := c.api.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, c.mapError("list favorites", err)
		}

		for _, obj := range output.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, jsonExt) {
				continue
			}
			var f documents.FavoriteDocument
			if err := c.getJSON(ctx, key, &f); err != nil {
				// deleted between list and get
				if errors.Is(err, common.ErrorNotFound) {
					continue
				}
				return nil, err
			}
			result = append(result, f)
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}

	return result, nil
}

func (c *S3Client) Ping(ctx context.Context) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("%w: head bucket: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *S3Client) Close() error {
	return nil
}
