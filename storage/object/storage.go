package object

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage saves downloaded files into a minio bucket
type Storage struct {
	client     *minio.Client
	endpoint   string
	bucketName string
	prefix     string
	useSSL     bool
}

// New creates a minio client for bucketName. It does not contact the server.
func New(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &Storage{
		client:     cli,
		endpoint:   endpoint,
		bucketName: bucketName,
		prefix:     "downloads",
		useSSL:     useSSL,
	}, nil
}

// Save uploads data as an object named after the resolved filename
func (s *Storage) Save(ctx context.Context, name string, data []byte) error {
	key := s.objectKey(name)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return fmt.Errorf("error putting object %s: %w", key, err)
	}
	return nil
}

// URL returns where a saved file can be fetched from
func (s *Storage) URL(name string) string {
	url := fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, s.objectKey(name))
	if s.useSSL {
		return "https://" + url
	}
	return "http://" + url
}

func (s *Storage) objectKey(name string) string {
	return path.Join(s.prefix, path.Base(path.Clean("/"+name)))
}
