package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxImageBytes = 10 << 20
	maxDimension  = 6000
	fullWidth     = 1600
	thumbWidth    = 400
	jpegQuality   = 85
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Processed holds the two JPEG renditions stored for every upload.
type Processed struct {
	Full  []byte
	Thumb []byte
}

// ProcessImage checks the bytes are an accepted image, caps the width at
// fullWidth and renders a thumbWidth thumbnail. Both come back as JPEG with
// EXIF orientation applied.
func ProcessImage(data []byte) (*Processed, error) {
	if !allowedTypes[http.DetectContentType(data)] {
		return nil, ErrUnsupportedImage
	}
	// the header is enough to refuse oversized images before pixels are allocated
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d, limit is %dpx", ErrImageTooLarge, cfg.Width, cfg.Height, maxDimension)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()

	full := img
	if b.Dx() > fullWidth {
		full = imaging.Resize(img, fullWidth, 0, imaging.Lanczos)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	fullBytes, err := encodeJPEG(full)
	if err != nil {
		return nil, err
	}
	thumbBytes, err := encodeJPEG(thumb)
	if err != nil {
		return nil, err
	}
	return &Processed{Full: fullBytes, Thumb: thumbBytes}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Images uploads processed renditions under folder/<uuid>.jpg and
// folder/thumbs/<uuid>.jpg.
type Images struct {
	store Uploader
}

func NewImages(store Uploader) *Images {
	return &Images{store: store}
}

type Stored struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl"`
}

func (i *Images) Save(ctx context.Context, folder string, data []byte) (*Stored, error) {
	p, err := ProcessImage(data)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + ".jpg"
	fullURL, err := i.store.Upload(ctx, path.Join(folder, name), "image/jpeg", p.Full)
	if err != nil {
		return nil, err
	}
	thumbURL, err := i.store.Upload(ctx, path.Join(folder, "thumbs", name), "image/jpeg", p.Thumb)
	if err != nil {
		return nil, err
	}
	return &Stored{URL: fullURL, ThumbURL: thumbURL}, nil
}
