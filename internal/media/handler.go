package media

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/apperr"
)

const (
	sniffLen = 3072

	msgNotImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// Raster formats only; SVG can carry script.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"}

func isImage(contentType string) bool {
	base, _, _ := strings.Cut(contentType, ";")
	mt := mimetype.Lookup(strings.TrimSpace(base))
	if mt == nil {
		return false
	}
	for _, t := range imageTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

type Handler struct {
	Store  Store
	Logger *zap.Logger
}

type UploadResponse struct {
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// sniff reads the head of r and returns its type plus a reader that replays it.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// Upload stores the multipart "file" field and returns its public path.
func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Invalid("file", "No file was submitted.")
	}
	if fh.Size == 0 {
		return apperr.Invalid("file", "The submitted file is empty.")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	contentType, body, err := sniff(src)
	if err != nil {
		return err
	}
	if !isImage(contentType) {
		return apperr.Invalid("file", msgNotImage)
	}

	name := NewName(fh.Filename)
	if err := h.Store.Save(c.Request().Context(), name, contentType, body); err != nil {
		return err
	}
	h.Logger.Info("file uploaded",
		zap.String("name", name),
		zap.String("content_type", contentType),
		zap.Int64("size", fh.Size),
	)

	return c.JSON(http.StatusCreated, UploadResponse{
		File:       "/media/" + name,
		UploadedAt: time.Now().UTC(),
	})
}

// Serve streams a stored file back. Anything that is not an image is sent
// as an opaque download.
func (h *Handler) Serve(c echo.Context) error {
	rc, contentType, err := h.Store.Open(c.Request().Context(), c.Param("name"))
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Not found.")
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	var body io.Reader = rc
	if contentType == "" {
		if contentType, body, err = sniff(rc); err != nil {
			return err
		}
	}

	header := c.Response().Header()
	header.Set("X-Content-Type-Options", "nosniff")
	if !isImage(contentType) {
		contentType = echo.MIMEOctetStream
		header.Set(echo.HeaderContentDisposition, `attachment; filename="`+c.Param("name")+`"`)
	}
	return c.Stream(http.StatusOK, contentType, body)
}
