package images

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignUploadPathStyle(t *testing.T) {
	p, err := NewPresigner(context.Background(), Config{
		Bucket:          "classes",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	uploadURL, publicURL, err := p.PresignUpload(context.Background(), "classes/abc/photo.png", "image/png")
	require.NoError(t, err)

	u, err := url.Parse(uploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/classes/classes/abc/photo.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	assert.Equal(t, "http://localhost:9000/classes/classes/abc/photo.png", publicURL)
}

func TestPublicURL(t *testing.T) {
	aws := &Presigner{cfg: Config{Bucket: "school", Region: "eu-west-1"}}
	assert.Equal(t, "https://school.s3.eu-west-1.amazonaws.com/classes/x.jpg", aws.PublicURL("classes/x.jpg"))

	virtual := &Presigner{cfg: Config{Bucket: "school", Endpoint: "https://storage.example.com/"}}
	assert.Equal(t, "https://school.storage.example.com/classes/x.jpg", virtual.PublicURL("classes/x.jpg"))
}
