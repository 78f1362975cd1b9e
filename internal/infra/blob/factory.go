// Package blob selects and constructs the configured archive storage backend.
package blob

import (
	"context"
	"fmt"

	"shopcore/internal/blob/core"
	"shopcore/internal/infra/blob/fs"
	"shopcore/internal/infra/blob/memory"
	"shopcore/internal/infra/blob/s3"
)

// Config selects and parameterizes an archive storage backend.
type Config struct {
	Driver core.Driver
	Root   string // fs: directory for archives
	S3     s3.Config
}

// Open constructs the configured backend, defaulting to the filesystem.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = core.DriverFilesystem
	}
	switch driver {
	case core.DriverFilesystem:
		return fs.New(cfg.Root)
	case core.DriverS3:
		return s3.New(ctx, cfg.S3)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
