package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"devconnect/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// multipartOverhead leaves room for form fields next to the file itself.
const multipartOverhead = 1 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func (h *Handlers) tooLarge() string {
	return fmt.Sprintf("File too large. Maximum size is %s.", humanize.IBytes(uint64(h.Cfg.MaxUploadSize)))
}

// parseMultipart limits the request body and parses the form. On failure it
// returns a field error map suitable for a 400 response.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request, field string) map[string]string {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return map[string]string{field: h.tooLarge()}
		}
		return map[string]string{"non_field_errors": "Malformed multipart form."}
	}

	return nil
}

// formImage reads an optional image from a parsed multipart form. The file
// type is taken from its content, not from the client. The returned close
// function must be called once the upload has been consumed.
func (h *Handlers) formImage(r *http.Request, field string) (*models.Upload, func(), map[string]string) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, map[string]string{field: "The submitted data was not a file."}
	}

	if header.Size > h.Cfg.MaxUploadSize {
		file.Close()
		return nil, noop, map[string]string{field: h.tooLarge()}
	}

	mtype, err := sniff(file)
	if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
		file.Close()
		return nil, noop, map[string]string{field: "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}
	}

	upload := &models.Upload{
		FileName:    imageFileName(header.Filename, mtype.Extension()),
		ContentType: mtype.String(),
		Size:        header.Size,
		Reader:      file,
	}

	return upload, func() { file.Close() }, nil
}

func sniff(file multipart.File) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return mtype, nil
}

// imageFileName replaces the client extension with the detected one.
func imageFileName(name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + ext
}
