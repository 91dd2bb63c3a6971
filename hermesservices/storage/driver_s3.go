package storage

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// Prefix is prepended to every object key, e.g. "workbooks/".
	Prefix string
}

func NewDriverS3(s3Config S3Config) (Driver, error) {
	if s3Config.Bucket == "" {
		return nil, errors.New("s3 storage needs a bucket")
	}

	return &driverS3{
		client: s3.New(
			s3.Options{
				BaseEndpoint: func() *string {
					if s3Config.Endpoint != "" {
						return aws.String(s3Config.Endpoint)
					}

					return nil
				}(),
				UsePathStyle: s3Config.Endpoint != "",
				Region: func() string {
					if s3Config.Endpoint != "" {
						return "auto"
					}

					return s3Config.Region
				}(),
				Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
					return aws.Credentials{
						AccessKeyID:     s3Config.AccessKeyID,
						SecretAccessKey: s3Config.AccessKeySecret,
					}, nil
				}),
			},
		),
		bucket: s3Config.Bucket,
		prefix: s3Config.Prefix,
	}, nil
}

type driverS3 struct {
	client *s3.Client
	bucket string
	prefix string
}

func (driver *driverS3) key(filePath string) *string {
	return aws.String(driver.prefix + filePath)
}

func (driver *driverS3) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	result, err := driver.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(filePath),
	})
	if err != nil {
		return nil, err
	}

	return result.Body, nil
}

func (driver *driverS3) Put(
	ctx context.Context,
	filePath string,
	payload io.Reader,
) error {
	if _, err := driver.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(driver.bucket),
			Key:         driver.key(filePath),
			Body:        payload,
			ContentType: aws.String(ContentType(filePath)),
		},
	); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Delete(ctx context.Context, filePath string) error {
	if _, err := driver.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(filePath),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) IsReady(ctx context.Context) error {
	if _, err := driver.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(driver.bucket),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Exists(ctx context.Context, filePath string) (bool, error) {
	if _, err := driver.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    driver.key(filePath),
	}); err != nil {
		var oe *types.NotFound
		if errors.As(err, &oe) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (driver *driverS3) Location(filePath string) string {
	return "s3://" + driver.bucket + "/" + driver.prefix + filePath
}
