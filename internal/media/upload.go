package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/thesuite/booking-api/internal/httperr"
)

const (
	MaxUploadBytes = 5 << 20
	// MaxSourceSide bounds decoded pixels; compressed size says nothing about them.
	MaxSourceSide = 8000
	AvatarSize     = 512
	webpQuality    = 82
)

type Uploader struct {
	store         ObjectStore
	publicBaseURL string
}

func NewUploader(store ObjectStore, publicBaseURL string) *Uploader {
	return &Uploader{
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// UploadAvatar stores a square WebP version of the image and returns its URL.
func (u *Uploader) UploadAvatar(ctx context.Context, professionalID uint, r io.Reader) (string, error) {
	if u == nil || u.store == nil {
		return "", httperr.ErrBusiness("uploads_disabled")
	}

	body, err := ProcessAvatar(r, AvatarSize)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%d/%s.webp", professionalID, uuid.NewString())
	if err := u.store.Put(ctx, key, "image/webp", body); err != nil {
		return "", err
	}

	return u.publicBaseURL + "/" + key, nil
}

// ProcessAvatar decodes a JPEG or PNG, crops it to a centered square, scales
// it down to at most size pixels and encodes WebP. Images are never upscaled.
func ProcessAvatar(r io.Reader, size int) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, httperr.ErrBusiness("image_too_large")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(err)
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide {
		return nil, httperr.ErrBusiness("image_too_large")
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(err)
	}

	crop := squareCrop(src.Bounds())
	side := crop.Dx()
	if side > size {
		side = size
	}
	if side <= 0 {
		return nil, httperr.ErrBusiness("invalid_image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var out bytes.Buffer
	if err := webp.Encode(&out, dst, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return out.Bytes(), nil
}

func decodeError(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return httperr.ErrBusiness("unsupported_image")
	}
	return httperr.ErrBusiness("invalid_image")
}

func squareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w == h {
		return b
	}
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}
