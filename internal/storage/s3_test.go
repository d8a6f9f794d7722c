package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3 is an in-memory stand-in for the S3 REST API, path-style only.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *mockS3) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	empty := io.NopCloser(bytes.NewReader(nil))

	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.objects[key] = body
		return &http.Response{StatusCode: http.StatusOK, Body: empty, Header: http.Header{"ETag": {`"etag"`}}}, nil
	case http.MethodGet:
		body, ok := m.objects[key]
		if !ok {
			return &http.Response{StatusCode: http.StatusNotFound, Body: empty, Header: http.Header{}}, nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{}}, nil
	case http.MethodDelete:
		delete(m.objects, key)
		return &http.Response{StatusCode: http.StatusNoContent, Body: empty, Header: http.Header{}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: empty, Header: http.Header{}}, nil
}

// decodeChunked unwraps a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	var size int
	for _, c := range parts[0] {
		size <<= 4
		switch {
		case c >= '0' && c <= '9':
			size += int(c - '0')
		case c >= 'a' && c <= 'f':
			size += int(c-'a') + 10
		default:
			return nil, false
		}
	}
	if size != len(parts[1]) {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockS3Storage(t *testing.T) (*S3Storage, *mockS3) {
	t.Helper()
	rt := &mockS3{objects: make(map[string][]byte)}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("cfg: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
	return NewS3StorageWithClient(client, "portraits"), rt
}

func TestS3Storage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, rt := newMockS3Storage(t)

	path, err := s.Save(ctx, "scholastic", "f1", "face.jpg", bytes.NewReader([]byte("jpeg")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != "s3://portraits/scholastic/f1/face.jpg" {
		t.Fatalf("unexpected path %s", path)
	}
	if _, ok := rt.objects["scholastic/f1/face.jpg"]; !ok {
		t.Fatalf("object not stored, have %v", rt.objects)
	}

	rc, err := s.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(rt.objects) != 0 {
		t.Fatalf("expected bucket empty, have %d objects", len(rt.objects))
	}
}

func TestS3Storage_ForeignPath(t *testing.T) {
	s, _ := newMockS3Storage(t)
	if _, err := s.Open(context.Background(), "/var/uploads/x.png"); err == nil {
		t.Fatal("expected error for path outside bucket")
	}
	if err := s.Delete(context.Background(), "s3://other/x.png"); err == nil {
		t.Fatal("expected error for another bucket")
	}
}
