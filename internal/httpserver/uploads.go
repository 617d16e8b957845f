package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Uploader forwards image uploads to Cloudinary's unsigned upload endpoint.
type Uploader struct {
	cloudName    string
	uploadPreset string
	client       *http.Client
	// baseURL is overridable in tests.
	baseURL string
}

// NewUploader returns nil when Cloudinary is not configured; the upload
// route then reports the feature as unavailable.
func NewUploader(cloudName, uploadPreset string) *Uploader {
	if cloudName == "" || uploadPreset == "" {
		return nil
	}
	return &Uploader{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      "https://api.cloudinary.com/v1_1",
	}
}

func (u *Uploader) upload(ctx *gin.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", file.Filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("upload_preset", u.uploadPreset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx.Request.Context(), http.MethodPost, endpoint, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("cloudinary status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", fmt.Errorf("no url in cloudinary response")
}

func uploadHandler(u *Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "uploads not configured"})
			return
		}
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		url, err := u.upload(c, file)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
