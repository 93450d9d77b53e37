// Package photos turns listing photo payloads into hosted image URLs.
package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/storage"
)

// System uploads photos to the media store and removes ones it hosts.
type System interface {
	// Upload decodes a data URI payload, stores it, and returns its URL.
	Upload(ctx context.Context, payload string) (string, error)
	// Remove deletes the blob behind url when this media store hosts it.
	// URLs hosted elsewhere and blobs already gone are ignored.
	Remove(ctx context.Context, url string) error
	// Hosts reports whether url points into this media store.
	Hosts(url string) bool
}

type uploader struct {
	store   storage.System
	maxSize int64
	logger  *slog.Logger
}

// New creates a photo uploader over store accepting images up to maxSize bytes.
func New(store storage.System, maxSize int64, logger *slog.Logger) System {
	return &uploader{
		store:   store,
		maxSize: maxSize,
		logger:  logger.With("system", "photos"),
	}
}

func (u *uploader) Upload(ctx context.Context, payload string) (string, error) {
	photo, err := Decode(payload, u.maxSize)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("properties/%s.%s", uuid.New(), photo.Ext())

	url, err := u.store.Upload(ctx, key, bytes.NewReader(photo.Data), photo.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	u.logger.Info("photo uploaded", "key", key, "size", len(photo.Data))
	return url, nil
}

func (u *uploader) Hosts(url string) bool {
	_, ok := u.store.KeyFromURL(url)
	return ok
}

func (u *uploader) Remove(ctx context.Context, url string) error {
	key, ok := u.store.KeyFromURL(url)
	if !ok {
		return nil
	}

	if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove photo %s: %w", key, err)
	}

	u.logger.Info("photo removed", "key", key)
	return nil
}
