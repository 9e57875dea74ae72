package objectstore

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestStaticStore_ExpandsTemplates(t *testing.T) {
	store := NewStaticStore(StaticConfig{
		UploadBucket:      "awap-bots",
		ReplayURLTemplate: "https://replays.example.com/{key}",
	})
	ctx := context.Background()

	require.Equal(t, "awap-bots", store.Bucket())

	got, err := store.SubmissionURL(ctx, "Alpha/my bot.py")
	require.NoError(t, err)
	require.Equal(t, "https://awap-bots.s3.amazonaws.com/Alpha/my%20bot.py", got)

	got, err = store.ReplayURL(ctx, "r/m-1.json")
	require.NoError(t, err)
	require.Equal(t, "https://replays.example.com/r/m-1.json", got)
}

func TestS3Store_PresignsWithoutNetwork(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		UsePathStyle: true,
		BaseEndpoint: aws.String("http://localhost:4566"),
	})
	store, err := NewS3Store(client, S3Config{UploadBucket: "awap-bots", PresignTTL: 5 * time.Minute})
	require.NoError(t, err)

	raw, err := store.PresignUpload(context.Background(), "Alpha/u-1-bot.py", "text/x-python")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/awap-bots/Alpha/u-1-bot.py", parsed.Path)
	require.Equal(t, "300", parsed.Query().Get("X-Amz-Expires"))
	require.True(t, strings.Contains(parsed.Query().Get("X-Amz-SignedHeaders"), "host"))

	replay, err := store.ReplayURL(context.Background(), "r/m-1.json")
	require.NoError(t, err)
	require.Contains(t, replay, "/awap-bots/r/m-1.json")
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(s3.New(s3.Options{Region: "us-east-1"}), S3Config{})
	require.Error(t, err)
}
