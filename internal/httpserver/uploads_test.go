package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func multipartBody(t *testing.T, fieldName string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile(fieldName, "photo.jpg")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-jpeg-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func TestUploadHandlerProxiesToCloudinary(t *testing.T) {
	var gotPreset string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPreset = r.FormValue("upload_preset")
		json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://res.cloudinary.test/img.jpg"})
	}))
	defer upstream.Close()

	uploader := &Uploader{
		cloudName:    "demo",
		uploadPreset: "unsigned",
		client:       &http.Client{Timeout: 5 * time.Second},
		baseURL:      upstream.URL,
	}
	router := testRouter(Deps{Uploader: uploader})

	body, contentType := multipartBody(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotPreset != "unsigned" {
		t.Fatalf("upload_preset not forwarded, got %q", gotPreset)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.URL != "https://res.cloudinary.test/img.jpg" {
		t.Fatalf("unexpected url %q", out.URL)
	}
}

func TestUploadHandlerRequiresFile(t *testing.T) {
	uploader := &Uploader{cloudName: "demo", uploadPreset: "unsigned", client: http.DefaultClient, baseURL: "http://unused"}
	router := testRouter(Deps{Uploader: uploader})

	body, contentType := multipartBody(t, "not-file")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadHandlerUnconfigured(t *testing.T) {
	router := testRouter(Deps{})
	body, contentType := multipartBody(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when uploads unconfigured, got %d", rec.Code)
	}
}

func TestUploadHandlerUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	uploader := &Uploader{
		cloudName:    "demo",
		uploadPreset: "unsigned",
		client:       &http.Client{Timeout: 5 * time.Second},
		baseURL:      upstream.URL,
	}
	router := testRouter(Deps{Uploader: uploader})

	body, contentType := multipartBody(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
