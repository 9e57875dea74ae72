package objectstore

import (
	"context"
	"net/url"
	"strings"
)

const (
	DefaultURLTemplate = "https://{bucket}.s3.amazonaws.com/{key}"
)

type StaticConfig struct {
	UploadBucket      string
	ReplayBucket      string
	URLTemplate       string
	ReplayURLTemplate string
}

// StaticStore builds URLs from templates without contacting any storage
// service. {bucket} and {key} are substituted; the key is path-escaped per
// segment.
type StaticStore struct {
	uploadBucket   string
	replayBucket   string
	urlTemplate    string
	replayTemplate string
}

func NewStaticStore(cfg StaticConfig) *StaticStore {
	urlTemplate := strings.TrimSpace(cfg.URLTemplate)
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	replayTemplate := strings.TrimSpace(cfg.ReplayURLTemplate)
	if replayTemplate == "" {
		replayTemplate = urlTemplate
	}
	replayBucket := strings.TrimSpace(cfg.ReplayBucket)
	if replayBucket == "" {
		replayBucket = strings.TrimSpace(cfg.UploadBucket)
	}

	return &StaticStore{
		uploadBucket:   strings.TrimSpace(cfg.UploadBucket),
		replayBucket:   replayBucket,
		urlTemplate:    urlTemplate,
		replayTemplate: replayTemplate,
	}
}

func (s *StaticStore) Bucket() string {
	return s.uploadBucket
}

func (s *StaticStore) PresignUpload(_ context.Context, objectKey, _ string) (string, error) {
	return expand(s.urlTemplate, s.uploadBucket, objectKey), nil
}

func (s *StaticStore) SubmissionURL(_ context.Context, objectKey string) (string, error) {
	return expand(s.urlTemplate, s.uploadBucket, objectKey), nil
}

func (s *StaticStore) ReplayURL(_ context.Context, replayKey string) (string, error) {
	return expand(s.replayTemplate, s.replayBucket, replayKey), nil
}

func expand(template, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.NewReplacer("{bucket}", bucket, "{key}", strings.Join(segments, "/")).Replace(template)
}
