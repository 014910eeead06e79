package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront/internal/observability"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="productImage"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["productImage"][0]
}

func testPolicy() Policy {
	return Policy{MaxBytes: 2 << 20, AllowedTypes: DefaultAllowedTypes}
}

func TestPolicyCheck(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		want        error
	}{
		{"png", "cat.png", "image/png", 10, nil},
		{"upper case ext", "CAT.JPG", "image/jpeg", 10, nil},
		{"jpeg", "cat.jpeg", "image/jpeg", 10, nil},
		{"gif", "cat.gif", "image/gif", 10, nil},
		{"jpg mime alias", "cat.jpg", "image/jpg", 10, nil},
		{"jpg mime alias upper", "cat.jpeg", "Image/JPG", 10, nil},
		{"exe", "virus.exe", "image/png", 10, ErrInvalidImageType},
		{"no extension", "cat", "image/png", 10, ErrInvalidImageType},
		{"mismatched mime", "cat.png", "application/octet-stream", 10, ErrInvalidImageType},
		{"missing mime", "cat.png", "", 10, ErrInvalidImageType},
		{"exactly max", "cat.png", "image/png", 2 << 20, nil},
		{"too large", "cat.png", "image/png", 2<<20 + 1, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testPolicy().Check(tt.filename, tt.contentType, tt.size)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "1700000000123-42-cat.png", GenerateFilename(now, 42, "cat.png"))
	assert.Equal(t, "1700000000123-42-cat.png", GenerateFilename(now, 42, "../../etc/cat.png"))
	assert.Equal(t, "1700000000123-42-cat.png", GenerateFilename(now, 42, `C:\Users\me\cat.png`))
	assert.Equal(t, "1700000000123-42-image", GenerateFilename(now, 42, ".."))
}

func TestUploaderAcceptStoresLocally(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalImageStore(dir)
	require.NoError(t, err)

	u := NewUploader(testPolicy(), store, observability.NopLogger())
	u.now = func() time.Time { return time.UnixMilli(1000) }
	u.random = func() int64 { return 7 }

	stored, err := u.Accept(context.Background(), fileHeader(t, "cat.png", "image/png", []byte("\x89PNG fake")))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "1000-7-cat.png")), stored)

	data, err := os.ReadFile(filepath.FromSlash(stored))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))

	u.Discard(context.Background(), stored)
	_, err = os.Stat(filepath.FromSlash(stored))
	assert.True(t, os.IsNotExist(err))
}

func TestUploaderRejectsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir)
	require.NoError(t, err)
	u := NewUploader(testPolicy(), store, observability.NopLogger())

	_, err = u.Accept(context.Background(), fileHeader(t, "virus.exe", "application/x-msdownload", []byte("MZ")))
	assert.ErrorIs(t, err, ErrInvalidImageType)

	small := NewUploader(Policy{MaxBytes: 4, AllowedTypes: DefaultAllowedTypes}, store, observability.NopLogger())
	_, err = small.Accept(context.Background(), fileHeader(t, "big.gif", "image/gif", []byte("GIF89a....")))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalImageStoreRemoveOutsideDir(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	err = store.Remove(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideUploadDir)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(*in.Bucket, *in.Key, *in.ContentType)
	if in.Body != nil {
		_, _ = io.Copy(io.Discard, in.Body)
	}
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(*in.Bucket, *in.Key)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3ImageStore(t *testing.T) {
	client := new(mockS3)
	store := NewS3ImageStore(client, "media", "/products/")

	client.On("PutObject", "media", "products/1-2-cat.png", "image/png").Return(nil).Once()
	stored, err := store.Save(context.Background(), "1-2-cat.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "s3://media/products/1-2-cat.png", stored)

	client.On("DeleteObject", "media", "products/1-2-cat.png").Return(nil).Once()
	require.NoError(t, store.Remove(context.Background(), stored))

	assert.ErrorIs(t, store.Remove(context.Background(), "s3://other/x.png"), ErrOutsideUploadDir)

	client.On("PutObject", "media", "products/3-4-dog.gif", "image/gif").Return(errors.New("boom")).Once()
	_, err = store.Save(context.Background(), "3-4-dog.gif", "image/gif", strings.NewReader("y"))
	assert.Error(t, err)

	client.AssertExpectations(t)
}
