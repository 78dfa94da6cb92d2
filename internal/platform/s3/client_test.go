package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/imamik/emc/internal/errs"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "fsn1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})
	return &Client{s3: client, region: "fsn1"}
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func s3Error(code string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func TestDefaultEndpoint(t *testing.T) {
	if got := DefaultEndpoint("nbg1"); got != "https://nbg1.your-objectstorage.com" {
		t.Errorf("DefaultEndpoint(nbg1) = %q", got)
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("", "fsn1", "access", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.region != "fsn1" {
		t.Errorf("region = %q, want fsn1", client.region)
	}
}

func TestEnsureBucket_Exists(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		w.WriteHeader(200)
	}))

	if err := client.EnsureBucket(context.Background(), "saves"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(methods) != 1 || methods[0] != http.MethodHead {
		t.Errorf("expected a single HEAD, got %v", methods)
	}
}

func TestEnsureBucket_CreatesMissing(t *testing.T) {
	var mu sync.Mutex
	created := false
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(404)
		case http.MethodPut:
			mu.Lock()
			created = true
			mu.Unlock()
			xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
		default:
			w.WriteHeader(400)
		}
	}))

	if err := client.EnsureBucket(context.Background(), "saves"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !created {
		t.Error("expected the bucket to be created")
	}
}

func TestEnsureBucket_AlreadyOwnedByYou(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(404)
			return
		}
		xmlResponse(w, 409, s3Error("BucketAlreadyOwnedByYou"))
	}))

	if err := client.EnsureBucket(context.Background(), "saves"); err != nil {
		t.Fatalf("expected nil error for an owned bucket, got: %v", err)
	}
}

func TestEnsureBucket_AccessDenied(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(403)
	}))

	err := client.EnsureBucket(context.Background(), "saves")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to check bucket saves") {
		t.Errorf("unexpected error message: %v", err)
	}
	if !errs.IsKind(err, errs.ProviderError) {
		t.Errorf("kind = %v, want ProviderError", errs.KindOf(err))
	}
}

func TestPutObject(t *testing.T) {
	var mu sync.Mutex
	var captured []byte
	var path string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(400)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		captured, _ = io.ReadAll(r.Body)
		path = r.URL.Path
		w.WriteHeader(200)
	}))

	data := []byte(`{"version":"1"}`)
	if err := client.PutObject(context.Background(), "saves", "emc/emc.json", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !bytes.Equal(captured, data) {
		t.Errorf("expected body %q, got %q", data, captured)
	}
	if path != "/saves/emc/emc.json" {
		t.Errorf("path = %q", path)
	}
}

func TestPutObject_Error(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied"))
	}))

	err := client.PutObject(context.Background(), "saves", "emc/emc.json", []byte("x"))
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to put object emc/emc.json in bucket saves") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestGetObject(t *testing.T) {
	want := []byte(`{"version":"1","servers":{}}`)
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(want)))
		w.WriteHeader(200)
		_, _ = w.Write(want)
	}))

	got, err := client.GetObject(context.Background(), "saves", "emc/emc.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGetObject_MissingKeyIsNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 404, s3Error("NoSuchKey"))
	}))

	_, err := client.GetObject(context.Background(), "saves", "missing")
	if !errs.IsKind(err, errs.NotFound) {
		t.Fatalf("kind = %v, want NotFound (err %v)", errs.KindOf(err), err)
	}
}

func TestGetObject_AccessDeniedIsProviderError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 403, s3Error("AccessDenied"))
	}))

	_, err := client.GetObject(context.Background(), "saves", "emc/emc.json")
	if !errs.IsKind(err, errs.ProviderError) {
		t.Fatalf("kind = %v, want ProviderError (err %v)", errs.KindOf(err), err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		ownedByUs bool
	}{
		{"nil", nil, false, false},
		{"typed NoSuchBucket", &s3types.NoSuchBucket{}, true, false},
		{"typed NoSuchKey", fmt.Errorf("wrapped: %w", &s3types.NoSuchKey{}), true, false},
		{"typed NotFound", &s3types.NotFound{}, true, false},
		{"typed owned", &s3types.BucketAlreadyOwnedByYou{}, false, true},
		{"api 404", &smithy.GenericAPIError{Code: "404"}, true, false},
		{"api owned", &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, false, true},
		{"api denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false, false},
		{"plain", fmt.Errorf("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("isNotFoundError = %v, want %v", got, tt.notFound)
			}
			if got := isBucketAlreadyOwnedByYou(tt.err); got != tt.ownedByUs {
				t.Errorf("isBucketAlreadyOwnedByYou = %v, want %v", got, tt.ownedByUs)
			}
		})
	}
}
