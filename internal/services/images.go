package services

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxImageKB is the upload limit for package images
const MaxImageKB = 2048

var (
	ErrNotImage      = errors.New("file is not a supported image")
	ErrImageTooLarge = errors.New("image exceeds the upload limit")
)

// PreparedImage is an upload that decoded cleanly and is ready to store
type PreparedImage struct {
	Data        []byte
	Ext         string
	ContentType string
	Width       int
	Height      int
}

// ImageProcessor validates uploads and shrinks oversized images
type ImageProcessor struct {
	MaxBytes     int64
	MaxDimension int
}

// NewImageProcessor returns a processor with the 2 MB package image limit.
// maxDimension <= 0 disables downscaling.
func NewImageProcessor(maxDimension int) *ImageProcessor {
	return &ImageProcessor{
		MaxBytes:     MaxImageKB * 1024,
		MaxDimension: maxDimension,
	}
}

type imageKind struct {
	ext    string
	format imaging.Format
	encode bool
}

var sniffedKinds = map[string]imageKind{
	"image/jpeg": {ext: ".jpg", format: imaging.JPEG, encode: true},
	"image/png":  {ext: ".png", format: imaging.PNG, encode: true},
	"image/gif":  {ext: ".gif", format: imaging.GIF, encode: true},
	"image/bmp":  {ext: ".bmp", format: imaging.BMP, encode: true},
	// imaging cannot encode webp, so webp uploads are stored as sent
	"image/webp": {ext: ".webp"},
}

// Prepare checks size and format of an upload, and downscales it when
// either side exceeds MaxDimension.
func (p *ImageProcessor) Prepare(data []byte) (*PreparedImage, error) {
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrNotImage
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	kind, ok := sniffedKinds[contentType]
	if !ok {
		return nil, ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotImage
	}

	bounds := img.Bounds()
	out := &PreparedImage{
		Data:        data,
		Ext:         kind.ext,
		ContentType: contentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}

	if !kind.encode || p.MaxDimension <= 0 {
		return out, nil
	}
	if out.Width <= p.MaxDimension && out.Height <= p.MaxDimension {
		return out, nil
	}

	resized := imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, kind.format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	out.Data = buf.Bytes()
	out.Width = resized.Bounds().Dx()
	out.Height = resized.Bounds().Dy()
	return out, nil
}
