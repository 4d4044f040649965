package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bitfantasy/joinery/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver stores raw collaborator payloads for audit.
type Archiver struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to MinIO. It returns nil when MinIO is not configured.
func New(cfg config.MinIOConfig, prefix string) (*Archiver, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &Archiver{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive writes a JSON payload under prefix/name.json.
func (a *Archiver) Archive(ctx context.Context, name string, payload []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, ObjectKey(a.prefix, name),
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// ObjectKey builds a safe object key from an external identifier.
func ObjectKey(prefix, name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	return path.Join(prefix, clean+".json")
}
