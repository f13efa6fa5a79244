package services

import (
	"context"
	"errors"
)

// Notification is the payload handed to a notification gateway.
type Notification struct {
	UserID      uint   `json:"user_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Type        string `json:"notification_type"`
	ReferenceID string `json:"reference_id"`
}

// Dispatcher delivers a notification to the user. Implementations must be
// safe for concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// FanoutDispatcher sends to every dispatcher and joins their errors.
type FanoutDispatcher []Dispatcher

func (f FanoutDispatcher) Dispatch(ctx context.Context, n Notification) error {
	var errs []error
	for _, d := range f {
		if err := d.Dispatch(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ImageUploader stores a base64 data-URI image and returns its public URL.
type ImageUploader interface {
	UploadBase64Image(ctx context.Context, dataURI, keyPrefix string) (string, error)
}
