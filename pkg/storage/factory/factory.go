// Package factory constructs storage backends from configuration.
package factory

import (
	"fmt"

	"github.com/kotoba-app/kotoba/pkg/storage"
	"github.com/kotoba-app/kotoba/pkg/storage/local"
	"github.com/kotoba-app/kotoba/pkg/storage/s3"
)

// New creates a storage backend based on configuration.
func New(cfg storage.Config) (storage.Storage, error) {
	switch cfg.Type {
	case "", "local":
		basePath := cfg.Local.BasePath
		if basePath == "" {
			basePath = "data/media"
		}
		return local.New(basePath)

	case "s3":
		return s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			PathStyle: cfg.S3.PathStyle,
			URLMode:   cfg.S3.URLMode,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
