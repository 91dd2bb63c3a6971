package storage_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermestools"
	"gotest.tools/v3/assert"
)

func Test_Driver_S3(t *testing.T) {
	t.Parallel()

	if os.Getenv("HERMES_TEST_STORAGE_S3_ACCESS_KEY_SECRET") == "" {
		t.Skip()
	}

	driver, err := storage.NewDriverS3(
		storage.S3Config{
			Region:          os.Getenv("HERMES_TEST_STORAGE_S3_REGION"),
			AccessKeyID:     os.Getenv("HERMES_TEST_STORAGE_S3_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("HERMES_TEST_STORAGE_S3_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("HERMES_TEST_STORAGE_S3_BUCKET"),
			Prefix:          "test/",
		},
	)
	assert.NilError(t, err)

	testSuite(t, driver)
}

func Test_Driver_S3_NeedsBucket(t *testing.T) {
	t.Parallel()

	_, err := storage.NewDriverS3(storage.S3Config{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket")
}

func Test_Driver_S3_Minio(t *testing.T) {
	t.Parallel()

	accessKeyID := uuid.NewString()
	accessKeySecret := uuid.NewString()
	bucketName := uuid.NewString()

	driver := hermestools.GetDockerService(
		t,
		hermestools.DockerServiceConfig[storage.Driver]{
			DockerImage:    "bitnami/minio",
			DockerImageTag: "latest",
			InternalPort:   9000,
			Environment: map[string]string{
				"MINIO_ROOT_USER":       accessKeyID,
				"MINIO_ROOT_PASSWORD":   accessKeySecret,
				"MINIO_DEFAULT_BUCKETS": bucketName,
			},
			Builder: func(host string, port int) (storage.Driver, error) {
				driver, err := storage.NewDriverS3(
					storage.S3Config{
						Endpoint:        fmt.Sprintf("http://%s:%d", host, port),
						AccessKeyID:     accessKeyID,
						AccessKeySecret: accessKeySecret,
						Bucket:          bucketName,
						Prefix:          "workbooks/",
					},
				)
				if err != nil {
					return nil, err
				}

				// Check if fully ready
				if err := driver.IsReady(t.Context()); err != nil {
					return nil, err
				}

				return driver, nil
			},
		},
	)

	testSuite(t, driver)
}
