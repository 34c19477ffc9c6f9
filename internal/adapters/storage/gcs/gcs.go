package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

const DefaultPublicBaseURL = "https://storage.googleapis.com"

var ErrForeignURL = errors.New("url does not belong to this bucket")

// Storage keeps uploaded blobs in a Google Cloud Storage bucket and serves them by public URL.
type Storage struct {
	srv           *storagev1.Service
	bucket        string
	publicBaseURL string
}

type Options struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

func New(ctx context.Context, opts Options, extra ...option.ClientOption) (*Storage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	clientOpts := []option.ClientOption{option.WithScopes(storagev1.DevstorageReadWriteScope)}
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	clientOpts = append(clientOpts, extra...)

	srv, err := storagev1.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(opts.PublicBaseURL, "/")
	if base == "" {
		base = DefaultPublicBaseURL
	}

	return &Storage{
		srv:           srv,
		bucket:        opts.Bucket,
		publicBaseURL: base,
	}, nil
}

// Put uploads data under name and returns its public URL.
func (s *Storage) Put(ctx context.Context, data []byte, contentType string, name string) (string, error) {
	obj := &storagev1.Object{
		Name:        name,
		ContentType: contentType,
	}
	_, err := s.srv.Objects.Insert(s.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		PredefinedAcl("publicRead").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return s.URL(name), nil
}

// Delete removes the object behind a URL returned by Put. Missing objects are not an error.
func (s *Storage) Delete(ctx context.Context, objectURL string) error {
	name, err := s.objectName(objectURL)
	if err != nil {
		return err
	}
	err = s.srv.Objects.Delete(s.bucket, name).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return nil
	}
	return err
}

func (s *Storage) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, url.PathEscape(name))
}

func (s *Storage) objectName(objectURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", s.publicBaseURL, s.bucket)
	if !strings.HasPrefix(objectURL, prefix) {
		return "", ErrForeignURL
	}
	return url.PathUnescape(strings.TrimPrefix(objectURL, prefix))
}
