// Package upload accepts product images and hands them to an ImageStore.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrInvalidImageType = errors.New("invalid image type")
	ErrImageTooLarge    = errors.New("image too large")
)

// DefaultAllowedTypes maps accepted extensions to their MIME type.
var DefaultAllowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// mimeAliases maps non-standard content types sent by some clients to
// their registered form.
var mimeAliases = map[string]string{
	"image/jpg": "image/jpeg",
}

// ImageStore persists accepted images.
type ImageStore interface {
	// Save writes r under name and returns the path recorded on the product.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Remove deletes an image previously returned by Save.
	Remove(ctx context.Context, storedPath string) error
}

// Policy describes which files are acceptable.
type Policy struct {
	MaxBytes     int64
	AllowedTypes map[string]string
}

// Check validates a file by extension, declared MIME type and size.
func (p Policy) Check(filename, contentType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := p.AllowedTypes[ext]; !ok {
		return fmt.Errorf("%w: extension %q", ErrInvalidImageType, ext)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !p.allowsMIME(mediaType) {
		return fmt.Errorf("%w: content type %q", ErrInvalidImageType, contentType)
	}

	if size > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, size, p.MaxBytes)
	}
	return nil
}

func (p Policy) allowsMIME(mediaType string) bool {
	if canonical, ok := mimeAliases[strings.ToLower(mediaType)]; ok {
		mediaType = canonical
	}
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}

// Uploader checks incoming files against a Policy and stores the accepted ones.
type Uploader struct {
	policy Policy
	store  ImageStore
	log    *slog.Logger

	now    func() time.Time
	random func() int64
}

// NewUploader creates a new Uploader.
func NewUploader(policy Policy, store ImageStore, log *slog.Logger) *Uploader {
	return &Uploader{
		policy: policy,
		store:  store,
		log:    log,
		now:    time.Now,
		random: func() int64 { return rand.Int63n(1e9) },
	}
}

// Accept validates fh and stores it under a generated name. The returned
// path is what gets attached to the product.
func (u *Uploader) Accept(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if err := u.policy.Check(fh.Filename, contentType, fh.Size); err != nil {
		u.log.InfoContext(ctx, "image rejected", "filename", fh.Filename, "content_type", contentType, "size", fh.Size, "err", err)
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	// f is seekable, which the S3 backend needs for payload signing
	name := GenerateFilename(u.now(), u.random(), fh.Filename)
	stored, err := u.store.Save(ctx, name, contentType, f)
	if err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", name, err)
	}

	u.log.DebugContext(ctx, "image stored", "path", stored, "size", fh.Size)
	return stored, nil
}

// Discard removes a stored image. Used when the product insert fails after
// the image was already written.
func (u *Uploader) Discard(ctx context.Context, storedPath string) {
	if storedPath == "" {
		return
	}
	if err := u.store.Remove(ctx, storedPath); err != nil {
		u.log.WarnContext(ctx, "failed to remove orphaned image", "path", storedPath, "err", err)
	}
}

// GenerateFilename builds "<unix-millis>-<n>-<original base name>".
func GenerateFilename(now time.Time, n int64, original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "image"
	}
	return fmt.Sprintf("%d-%d-%s", now.UnixMilli(), n, base)
}
