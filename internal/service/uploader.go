package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/storage"
)

const (
	imageFolder      = "message-images"
	documentFolder   = "message-documents"
	attachmentMaxAge = "max-age=3600"
)

// FileStorage abstracts object storage operations for testability.
type FileStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, opts storage.PutOptions) error
	GetURL(key string) string
	Delete(ctx context.Context, key string) error
}

// AttachmentUploader turns data-URI attachments into stored objects.
type AttachmentUploader struct {
	storage FileStorage
	now     func() time.Time
	token   func() string
}

// NewAttachmentUploader creates an AttachmentUploader.
func NewAttachmentUploader(fs FileStorage) *AttachmentUploader {
	return &AttachmentUploader{
		storage: fs,
		now:     time.Now,
		token:   uuid.NewString,
	}
}

// Upload decodes one attachment, stores it and returns its metadata with the
// public URL, plus the storage key.
func (u *AttachmentUploader) Upload(ctx context.Context, in models.AttachmentUpload) (models.Attachment, string, error) {
	payload, err := decodeDataURI(in.Data)
	if err != nil {
		return models.Attachment{}, "", err
	}

	key := u.objectKey(in)
	err = u.storage.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{
		ContentType:  in.Type,
		CacheControl: attachmentMaxAge,
	})
	if err != nil {
		return models.Attachment{}, "", UploadError("UPLOAD_FAILED", "Failed to upload files", err)
	}

	return models.Attachment{
		URL:     u.storage.GetURL(key),
		Name:    in.Name,
		Type:    in.Type,
		IsImage: in.IsImage,
		Size:    in.Size,
	}, key, nil
}

// UploadAll uploads attachments one at a time in order. On failure it
// returns the error together with the keys stored before it.
func (u *AttachmentUploader) UploadAll(ctx context.Context, in []models.AttachmentUpload) ([]models.Attachment, []string, error) {
	if len(in) == 0 {
		return nil, nil, nil
	}

	uploaded := make([]models.Attachment, 0, len(in))
	keys := make([]string, 0, len(in))
	for i, a := range in {
		att, key, err := u.Upload(ctx, a)
		if err != nil {
			slog.Error("attachment upload failed", "index", i, "name", a.Name, "error", err)
			return nil, keys, err
		}
		uploaded = append(uploaded, att)
		keys = append(keys, key)
	}
	return uploaded, keys, nil
}

// Remove deletes stored objects best-effort, logging failures.
func (u *AttachmentUploader) Remove(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := u.storage.Delete(ctx, key); err != nil {
			slog.Warn("orphaned attachment not removed", "key", key, "error", err)
		}
	}
}

func (u *AttachmentUploader) objectKey(in models.AttachmentUpload) string {
	name := strconv.FormatInt(u.now().UnixMilli(), 10) + "-" + u.token()
	if ext := fileExtension(in.Name); ext != "" {
		name += "." + ext
	}
	folder := documentFolder
	if in.IsImage {
		folder = imageFolder
	}
	return folder + "/" + name
}

// fileExtension returns the text after the last "." in name, or "" when
// name has no dot.
func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// decodeDataURI drops everything through the first comma and base64-decodes
// the remainder.
func decodeDataURI(data string) ([]byte, error) {
	_, payload, ok := strings.Cut(data, ",")
	if !ok {
		return nil, DecodeError("attachment data is not a data URI", errors.New("missing comma separator"))
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, DecodeError("attachment data is not valid base64", fmt.Errorf("decoding payload: %w", err))
	}
	return b, nil
}
