package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned by Unconfigured for every write.
var ErrNotConfigured = errors.New("object storage not configured")

// Unconfigured stands in when no object store is set up. Text-only
// messages keep working; attachment uploads fail.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, io.Reader, int64, PutOptions) error {
	return ErrNotConfigured
}

func (Unconfigured) GetURL(string) string { return "" }

func (Unconfigured) Delete(context.Context, string) error { return ErrNotConfigured }
