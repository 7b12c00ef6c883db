package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the subset of the S3 REST API the store uses (GET, PUT,
// DELETE on path-style object URLs) from an in-memory map.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// path-style: /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return xmlError(http.StatusNotFound, "NoSuchKey"), nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(body)),
		}, nil
	case http.MethodPut:
		if f.failPut {
			return xmlError(http.StatusInternalServerError, "InternalError"), nil
		}
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"ETag": {`"etag"`}},
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	case http.MethodDelete:
		delete(f.objects, key)
		return &http.Response{StatusCode: http.StatusNoContent, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

func xmlError(status int, code string) *http.Response {
	body := `<?xml version="1.0" encoding="UTF-8"?><Error><Code>` + code + `</Code><Message>` + code + `</Message></Error>`
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/xml"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newFakeStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.RetryMaxAttempts = 1
	})
	return NewWithClient(client, "truassets"), fake
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newFakeStore(t)

	_, ok, err := s.Get(context.Background(), "truassets_session")
	require.NoError(t, err, "NoSuchKey must map to ok=false, not an error")
	assert.False(t, ok)
}

func TestStore_SetGetRemove(t *testing.T) {
	s, fake := newFakeStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "truassets_properties", `[{"id":"prop-1"}]`))
	assert.Equal(t, `[{"id":"prop-1"}]`, string(fake.objects["truassets_properties"]))

	v, ok, err := s.Get(ctx, "truassets_properties")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"prop-1"}]`, v)

	require.NoError(t, s.Remove(ctx, "truassets_properties"))
	_, ok, err = s.Get(ctx, "truassets_properties")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetFailure(t *testing.T) {
	s, fake := newFakeStore(t)
	fake.failPut = true

	err := s.Set(context.Background(), "truassets_users", `[]`)
	assert.Error(t, err)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
