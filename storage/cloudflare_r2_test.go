package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestUploader(t *testing.T, api objectAPI, base string) *cloudflareR2Uploader {
	t.Helper()
	u, err := parsePublicBaseURL(base)
	require.NoError(t, err)
	return newR2Uploader(api, "club-bucket", u)
}

func TestR2Upload(t *testing.T) {
	api := &fakeObjectAPI{}
	u := newTestUploader(t, api, "https://cdn.example.com/media")

	res, err := u.Upload(context.Background(), "players/avatars/p1/x.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)

	assert.Equal(t, "club-bucket", aws.ToString(api.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(api.put.ContentType))
	assert.Equal(t, "img", api.body)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example.com/media/players/avatars/p1/x.png", res.Location)
}

func TestR2UploadError(t *testing.T) {
	u := newTestUploader(t, &fakeObjectAPI{err: errors.New("boom")}, "https://cdn.example.com")

	_, err := u.Upload(context.Background(), "k", "image/png", strings.NewReader(""))
	assert.ErrorContains(t, err, "key: k")
}

func TestR2Delete(t *testing.T) {
	api := &fakeObjectAPI{}
	u := newTestUploader(t, api, "https://cdn.example.com")

	require.NoError(t, u.Delete(context.Background(), "a/b.png"))
	assert.Equal(t, []string{"a/b.png"}, api.deleted)
}

func TestGetPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.example.com", "logo.png", "https://cdn.example.com/logo.png"},
		{"base with trailing slash", "https://cdn.example.com/pub/", "a/b.png", "https://cdn.example.com/pub/a/b.png"},
		{"key with leading slash", "https://cdn.example.com/pub", "/a/b.png", "https://cdn.example.com/pub/a/b.png"},
		{"empty key", "https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUploader(t, &fakeObjectAPI{}, tt.base)
			assert.Equal(t, tt.want, u.GetPublicURL(tt.key))
		})
	}
}

func TestParsePublicBaseURLRejectsRelative(t *testing.T) {
	_, err := parsePublicBaseURL("cdn.example.com")
	assert.Error(t, err)
}

func TestObjectKeyAndExtension(t *testing.T) {
	key := ObjectKey(FolderPlayerAvatars, "p1", "png")
	assert.True(t, strings.HasPrefix(key, "players/avatars/p1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	ext, err := ExtensionFromContentType("IMAGE/JPEG")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = ExtensionFromContentType("application/pdf")
	assert.Error(t, err)
}

func TestDisabledUploader(t *testing.T) {
	u := NewDisabledUploader()
	_, err := u.Upload(context.Background(), "k", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, u.Delete(context.Background(), "k"), ErrStorageUnavailable)
	assert.Empty(t, u.GetPublicURL("k"))
}
