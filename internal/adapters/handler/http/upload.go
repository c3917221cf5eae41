package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

const multipartMemory = 8 << 20

// Uploader parses form submissions and stores their image part.
type Uploader struct {
	images   ports.ImageStore
	baseURL  string
	maxBytes int64
}

func NewUploader(images ports.ImageStore, baseURL string, maxBytes int64) *Uploader {
	return &Uploader{
		images:   images,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

// parseForm accepts multipart, urlencoded and JSON bodies. JSON members are
// copied into r.Form; non-string members keep their raw JSON text.
func (u *Uploader) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes)

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		return parseJSONForm(r)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return domain.ErrInvalidRequest
	}
	return nil
}

func parseJSONForm(r *http.Request) error {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return domain.ErrInvalidRequest
	}

	form := url.Values{}
	for key, raw := range fields {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			form.Set(key, s)
			continue
		}
		form.Set(key, string(raw))
	}
	r.Form = form
	r.PostForm = form
	return nil
}

// saveImage stores the file sent under field and returns its public URL, or
// "" when the request carries no file.
func (u *Uploader) saveImage(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", domain.ErrInvalidRequest
	}
	defer file.Close()

	path, err := u.images.Save(r.Context(), header.Filename, file)
	if err != nil {
		return "", err
	}
	return u.publicURL(r, path), nil
}

func (u *Uploader) publicURL(r *http.Request, path string) string {
	if u.baseURL != "" {
		return u.baseURL + path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}
