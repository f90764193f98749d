package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irisauth/kiosk/pkg/capture"
	"github.com/irisauth/kiosk/pkg/transport"
)

func testFrame() *capture.Frame {
	return &capture.Frame{
		ID:           "frame-1",
		Width:        640,
		Height:       480,
		EncodedBytes: []byte{0xff, 0xd8, 0x00, 0x01, 0xff, 0xd9},
		Timestamp:    time.Now(),
	}
}

func TestSendEndpoints(t *testing.T) {
	tests := []struct {
		flow transport.FlowKind
		path string
	}{
		{transport.RegisterEnroll, "/capture_iris_registration"},
		{transport.UserEnroll, "/capture_iris"},
		{transport.Verify, "/verify_iris"},
	}

	for _, tt := range tests {
		t.Run(string(tt.flow), func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("parse multipart: %v", err)
				}
				file, header, err := r.FormFile("iris_image")
				if err != nil {
					t.Fatalf("missing iris_image field: %v", err)
				}
				defer file.Close()
				if header.Filename != "iris.jpg" {
					t.Errorf("filename = %q, want iris.jpg", header.Filename)
				}
				data, _ := io.ReadAll(file)
				if len(data) != 6 {
					t.Errorf("payload = %d bytes, want 6", len(data))
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			res := transport.NewClient(srv.URL).Send(context.Background(), tt.flow, testFrame())
			if !res.OK() {
				t.Errorf("result = %+v, want success", res)
			}
			if gotPath != tt.path {
				t.Errorf("path = %q, want %q", gotPath, tt.path)
			}
			if res.Flow != tt.flow {
				t.Errorf("result flow = %q, want %q", res.Flow, tt.flow)
			}
		})
	}
}

func TestSendResponseMapping(t *testing.T) {
	t.Run("2xx empty body is success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
		if res.Outcome != transport.Success {
			t.Errorf("outcome = %q, want success", res.Outcome)
		}
	})

	t.Run("2xx message is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Iris authentication successful","username":"ada"}`))
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
		if !res.OK() {
			t.Fatalf("result = %+v, want success", res)
		}
		if res.Message != "Iris authentication successful" {
			t.Errorf("message = %q", res.Message)
		}
	})

	t.Run("application error passes message through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"no match"}`))
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
		if res.Outcome != transport.Failure {
			t.Fatalf("outcome = %q, want failure", res.Outcome)
		}
		if res.Message != "no match" {
			t.Errorf("message = %q, want %q", res.Message, "no match")
		}
	})

	t.Run("malformed body falls back to generic message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`<html>bad gateway</html>`))
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
		if res.Outcome != transport.Failure {
			t.Fatalf("outcome = %q, want failure", res.Outcome)
		}
		if res.Message != "Authentication failed" {
			t.Errorf("message = %q, want verify fallback", res.Message)
		}
	})

	t.Run("enroll fallback differs from verify", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.UserEnroll, testFrame())
		if res.Message != "Failed to capture iris" {
			t.Errorf("message = %q, want enroll fallback", res.Message)
		}
	})

	t.Run("network failure is a failure result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
		if res.Outcome != transport.Failure {
			t.Fatalf("outcome = %q, want failure", res.Outcome)
		}
		if res.Message != "Authentication failed" {
			t.Errorf("message = %q, want verify fallback", res.Message)
		}
	})

	t.Run("nil frame refused without a request", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
		}))
		defer srv.Close()

		res := transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, nil)
		if res.Outcome != transport.Failure {
			t.Errorf("outcome = %q, want failure", res.Outcome)
		}
		if requests != 0 {
			t.Errorf("requests = %d, want 0", requests)
		}
	})
}

func TestSendDeterminism(t *testing.T) {
	// Identical inputs against identical responses yield identical results.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Iris authentication failed. No matching iris found."}`))
	}))
	defer srv.Close()

	c := transport.NewClient(srv.URL)
	frame := testFrame()
	first := c.Send(context.Background(), transport.Verify, frame)
	second := c.Send(context.Background(), transport.Verify, frame)
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestSendExactlyOneRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	transport.NewClient(srv.URL).Send(context.Background(), transport.Verify, testFrame())
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (no retry)", requests)
	}
}

func TestAccountEndpoints(t *testing.T) {
	t.Run("register success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/register" {
				t.Errorf("path = %q", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"Registration successful"}`))
		}))
		defer srv.Close()

		if err := transport.NewClient(srv.URL).Register(context.Background(), "ada", "hunter2"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("logout issues a single GET", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			if r.URL.Path != "/logout" {
				t.Errorf("path = %q", r.URL.Path)
			}
		}))
		defer srv.Close()

		if err := transport.NewClient(srv.URL).Logout(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("login failure carries remote message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid username or password"}`))
		}))
		defer srv.Close()

		err := transport.NewClient(srv.URL).Login(context.Background(), "ada", "wrong")
		var apiErr *transport.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", apiErr.StatusCode)
		}
		if apiErr.Message != "Invalid username or password" {
			t.Errorf("message = %q", apiErr.Message)
		}
	})
}
