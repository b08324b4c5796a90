package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
)

func base64Std(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUpload_Image(t *testing.T) {
	fs := &mockStorage{}
	u := newTestUploader(fs)

	att, key, err := u.Upload(context.Background(), models.AttachmentUpload{
		Data:    dataURI("image/png", "PNGDATA"),
		Name:    "holiday.photo.png",
		Type:    "image/png",
		IsImage: true,
		Size:    7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := "message-images/1767949200000-tok.png"
	if key != wantKey {
		t.Errorf("key = %q, want %q", key, wantKey)
	}
	if att.URL != "http://cdn.test/message-attachments/"+wantKey {
		t.Errorf("URL = %q", att.URL)
	}
	if att.Name != "holiday.photo.png" || att.Type != "image/png" || !att.IsImage || att.Size != 7 {
		t.Errorf("metadata not passed through: %+v", att)
	}

	if len(fs.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(fs.objects))
	}
	obj := fs.objects[0]
	if string(obj.Body) != "PNGDATA" {
		t.Errorf("body = %q, want decoded payload", obj.Body)
	}
	if obj.Opts.ContentType != "image/png" {
		t.Errorf("ContentType = %q", obj.Opts.ContentType)
	}
	if obj.Opts.CacheControl != "max-age=3600" {
		t.Errorf("CacheControl = %q, want max-age=3600", obj.Opts.CacheControl)
	}
}

func TestUpload_DocumentFolder(t *testing.T) {
	fs := &mockStorage{}
	u := newTestUploader(fs)

	_, key, err := u.Upload(context.Background(), models.AttachmentUpload{
		Data: dataURI("application/pdf", "%PDF"),
		Name: "invoice.pdf",
		Type: "application/pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "message-documents/1767949200000-tok.pdf" {
		t.Errorf("key = %q", key)
	}
}

func TestUpload_NoExtension(t *testing.T) {
	fs := &mockStorage{}
	u := newTestUploader(fs)

	_, key, err := u.Upload(context.Background(), models.AttachmentUpload{
		Data: dataURI("text/plain", "hello"),
		Name: "README",
		Type: "text/plain",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "message-documents/1767949200000-tok" {
		t.Errorf("key = %q, want extension-less name", key)
	}
}

func TestUpload_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no comma", "aGVsbG8="},
		{"bad base64", "data:text/plain;base64,@@not-base64@@"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &mockStorage{}
			u := newTestUploader(fs)

			_, _, err := u.Upload(context.Background(), models.AttachmentUpload{Data: tt.data, Name: "x.txt"})
			if !errors.Is(err, ErrUpload) {
				t.Fatalf("expected upload error, got %v", err)
			}
			var se *ServiceError
			if !errors.As(err, &se) || se.Code != "DECODE_FAILED" {
				t.Errorf("expected DECODE_FAILED, got %+v", err)
			}
			if fs.uploads != 0 {
				t.Errorf("storage called %d times for undecodable payload", fs.uploads)
			}
		})
	}
}

func TestUpload_StorageFailure(t *testing.T) {
	fs := &mockStorage{failOn: 1}
	u := newTestUploader(fs)

	_, _, err := u.Upload(context.Background(), models.AttachmentUpload{Data: dataURI("text/plain", "x"), Name: "x.txt"})
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if !errors.Is(err, errStorageDown) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
}

func TestUploadAll_SequentialAndOrdered(t *testing.T) {
	fs := &mockStorage{}
	u := newTestUploader(fs)
	n := 0
	u.token = func() string { n++; return string(rune('a' + n - 1)) }

	atts, keys, err := u.UploadAll(context.Background(), []models.AttachmentUpload{
		{Data: dataURI("image/png", "1"), Name: "one.png", IsImage: true},
		{Data: dataURI("text/plain", "2"), Name: "two.txt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atts) != 2 || len(keys) != 2 {
		t.Fatalf("got %d attachments and %d keys, want 2 each", len(atts), len(keys))
	}
	if keys[0] != "message-images/1767949200000-a.png" || keys[1] != "message-documents/1767949200000-b.txt" {
		t.Errorf("keys = %v", keys)
	}
	if atts[0].Name != "one.png" || atts[1].Name != "two.txt" {
		t.Errorf("order not preserved: %+v", atts)
	}
}

func TestUploadAll_StopsAtFirstFailure(t *testing.T) {
	fs := &mockStorage{failOn: 2}
	u := newTestUploader(fs)

	atts, keys, err := u.UploadAll(context.Background(), []models.AttachmentUpload{
		{Data: dataURI("text/plain", "1"), Name: "a.txt"},
		{Data: dataURI("text/plain", "2"), Name: "b.txt"},
		{Data: dataURI("text/plain", "3"), Name: "c.txt"},
	})
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if atts != nil {
		t.Errorf("expected no attachments, got %+v", atts)
	}
	if len(keys) != 1 {
		t.Errorf("expected the one stored key to be reported, got %v", keys)
	}
	if fs.uploads != 2 {
		t.Errorf("expected upload to stop after the failure, got %d calls", fs.uploads)
	}
}

func TestUploadAll_Empty(t *testing.T) {
	u := newTestUploader(&mockStorage{})
	atts, keys, err := u.UploadAll(context.Background(), nil)
	if err != nil || atts != nil || keys != nil {
		t.Fatalf("UploadAll(nil) = %v, %v, %v", atts, keys, err)
	}
}

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.png":      "png",
		"archive.tar.gz": "gz",
		"README":         "",
		"trailing.":      "",
		".env":           "env",
	}
	for name, want := range tests {
		if got := fileExtension(name); got != want {
			t.Errorf("fileExtension(%q) = %q, want %q", name, got, want)
		}
	}
}
