package validators

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

const sniffLen = 512

// imageTypes maps the accepted sniffed content types to the extension stored.
var imageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// Image is an uploaded file that passed the image filter. Close releases the
// underlying multipart file.
type Image struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Ext         string
	closer      io.Closer
}

func (i *Image) Close() error {
	if i == nil || i.closer == nil {
		return nil
	}
	return i.closer.Close()
}

// ParseMultipart bounds the request body and parses the form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodePayloadTooLarge, "upload exceeds size limit")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormImage returns the image in field, or nil when the field is absent. The
// file must be a png, jpeg or webp by extension, declared type, and content.
func FormImage(r *http.Request, field string, maxBytes int64) (*Image, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	img, err := checkImage(file, header, maxBytes)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return img, nil
}

func checkImage(file multipart.File, header *multipart.FileHeader, maxBytes int64) (*Image, error) {
	if header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, fmt.Sprintf("image exceeds %d MB", maxBytes>>20))
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, unsupportedImage()
	}
	if declared := header.Header.Get("Content-Type"); declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil || imageTypes[strings.ToLower(mediaType)] == "" {
			return nil, unsupportedImage()
		}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	head = head[:n]
	sniffed := http.DetectContentType(head)
	ext, ok := imageTypes[sniffed]
	if !ok {
		return nil, unsupportedImage()
	}

	return &Image{
		Body:        io.MultiReader(bytes.NewReader(head), file),
		Size:        header.Size,
		ContentType: sniffed,
		Ext:         ext,
		closer:      file,
	}, nil
}

func unsupportedImage() error {
	return pkgerrors.New(pkgerrors.CodeUnsupportedMedia, "only png, jpeg, jpg and webp images are allowed")
}
