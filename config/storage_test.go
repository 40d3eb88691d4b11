package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3ConfigKey(t *testing.T) {
	assert.Equal(t, "pad-thai.jpg", (&S3Config{BucketName: "b"}).Key("pad-thai.jpg"))
	assert.Equal(t, "covers/pad-thai.jpg", (&S3Config{BucketName: "b", Prefix: "covers"}).Key("pad-thai.jpg"))
}

func TestNewS3ConfigRequiresBucket(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "")
	_, err := NewS3Config(context.Background(), "", "")
	assert.Error(t, err)
}
