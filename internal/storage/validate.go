package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest accepted image
const MaxFileSize = 2 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds the 2MB limit")
	ErrUnsupportedType = errors.New("only JPEG, PNG and WebP images are allowed")
	ErrTooManyFiles    = errors.New("too many files")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateImage sniffs the content type of data and checks it against the
// allowed image types and the size limit.
func ValidateImage(name string, data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	if len(data) > MaxFileSize {
		return File{}, fmt.Errorf("%s: %w", name, ErrFileTooLarge)
	}
	mtype := mimetype.Detect(data)
	if !allowedTypes[mtype.String()] {
		return File{}, fmt.Errorf("%s (%s): %w", name, mtype.String(), ErrUnsupportedType)
	}
	return File{Name: name, ContentType: mtype.String(), Extension: mtype.Extension(), Data: data}, nil
}

// ReadImages reads and validates at most max uploaded images
func ReadImages(headers []*multipart.FileHeader, max int) ([]File, error) {
	if len(headers) > max {
		return nil, fmt.Errorf("%w: at most %d images allowed", ErrTooManyFiles, max)
	}
	files := make([]File, 0, len(headers))
	for _, h := range headers {
		if h.Size > MaxFileSize {
			return nil, fmt.Errorf("%s: %w", h.Filename, ErrFileTooLarge)
		}
		data, err := readHeader(h)
		if err != nil {
			return nil, err
		}
		f, err := ValidateImage(h.Filename, data)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readHeader(h *multipart.FileHeader) ([]byte, error) {
	src, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.Filename, err)
	}
	return data, nil
}

// IsValidationError reports whether err was caused by a rejected upload
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTooManyFiles) || errors.Is(err, ErrEmptyFile)
}
