package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubObjectAPI struct {
	existsErr   error
	exists      bool
	checkCalls  int
	madeBucket  bool
	policySet   bool
	putKeys     []string
	putContents []string
}

func (s *stubObjectAPI) BucketExists(context.Context, string) (bool, error) {
	s.checkCalls++
	if s.existsErr != nil {
		err := s.existsErr
		s.existsErr = nil
		return false, err
	}
	return s.exists, nil
}

func (s *stubObjectAPI) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	s.madeBucket = true
	s.exists = true
	return nil
}

func (s *stubObjectAPI) SetBucketPolicy(context.Context, string, string) error {
	s.policySet = true
	return nil
}

func (s *stubObjectAPI) PutObject(_ context.Context, _ string, key string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	s.putKeys = append(s.putKeys, key)
	s.putContents = append(s.putContents, string(body))
	return minio.UploadInfo{Key: key}, nil
}

func newStubClient(api *stubObjectAPI) *Client {
	return &Client{bucket: "photos-bucket", publicBaseURL: "http://cdn.local", client: api}
}

func TestUploadPhotoKeyAndURL(t *testing.T) {
	api := &stubObjectAPI{}
	client := newStubClient(api)

	url, err := client.UploadPhoto(context.Background(), "64f000000000000000000001", "House.JPG", strings.NewReader("bytes"), "image/jpeg")
	require.NoError(t, err)

	require.Len(t, api.putKeys, 1)
	key := api.putKeys[0]
	assert.True(t, strings.HasPrefix(key, "photos/64f000000000000000000001/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension is lowercased: %s", key)
	assert.Equal(t, "http://cdn.local/photos-bucket/"+key, url)
	assert.Equal(t, "bytes", api.putContents[0])

	assert.True(t, api.madeBucket)
	assert.True(t, api.policySet)
}

func TestUploadPhotoRetriesBucketInit(t *testing.T) {
	api := &stubObjectAPI{existsErr: errors.New("connection refused")}
	client := newStubClient(api)

	// The first caller's failure must not poison the store for the rest of
	// the process.
	_, err := client.UploadPhoto(context.Background(), "64f000000000000000000001", "a.png", strings.NewReader("x"), "image/png")
	require.Error(t, err)
	assert.Empty(t, api.putKeys)

	url, err := client.UploadPhoto(context.Background(), "64f000000000000000000001", "a.png", strings.NewReader("x"), "image/png")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, 2, api.checkCalls)

	// Once ready, later uploads skip the existence check entirely.
	_, err = client.UploadPhoto(context.Background(), "64f000000000000000000001", "b.png", strings.NewReader("y"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 2, api.checkCalls)
}

func TestUploadPhotoRejectsMissingOwner(t *testing.T) {
	client := newStubClient(&stubObjectAPI{})
	_, err := client.UploadPhoto(context.Background(), "  ", "a.png", strings.NewReader("x"), "image/png")
	assert.Error(t, err)
}
