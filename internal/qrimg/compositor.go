package qrimg

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	// DefaultLinkSize is the rendered size for short link QR images.
	DefaultLinkSize = 300
	// DefaultPortalSize is the rendered size for WiFi portal QR images.
	DefaultPortalSize = 512

	// logoScale is the logo edge relative to the QR edge. Combined with the
	// Highest error correction level (~30% recoverable modules) the QR stays
	// scannable with the center obscured.
	logoScale = 0.25
	// padding around the logo painted white so partially covered modules do
	// not read as noise.
	logoPadding = 4
	borderWidth = 2
)

type Compositor struct {
	log *zap.Logger
}

func NewCompositor(log *zap.Logger) *Compositor {
	return &Compositor{log: log}
}

// Render produces a PNG QR image for payload at the given pixel size. When
// logo bytes are supplied, the logo is resized to a quarter of the QR edge
// and centered over a white padded backdrop. A logo that fails to decode or
// composite never fails the render: the plain QR image is returned instead,
// byte for byte the same as a render without a logo.
func (c *Compositor) Render(payload string, size int, logo []byte) ([]byte, error) {
	qr, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, err
	}

	plain, err := encodePNG(qr.Image(size))
	if err != nil {
		return nil, err
	}

	if len(logo) == 0 {
		return plain, nil
	}

	composited, err := c.overlay(qr.Image(size), logo)
	if err != nil {
		c.log.Warn("Logo compositing failed, falling back to plain QR", zap.Error(err))
		return plain, nil
	}
	return composited, nil
}

// RenderDataURL renders like Render and wraps the result as a base64 PNG
// data URL, the form stored on link and portal records.
func (c *Compositor) RenderDataURL(payload string, size int, logo []byte) (string, error) {
	raw, err := c.Render(payload, size, logo)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func (c *Compositor) overlay(qrImage image.Image, logo []byte) ([]byte, error) {
	logoImage, err := imaging.Decode(bytes.NewReader(logo))
	if err != nil {
		return nil, err
	}

	bounds := qrImage.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	logoSize := int(float64(min(width, height)) * logoScale)
	logoX := (width - logoSize) / 2
	logoY := (height - logoSize) / 2

	resized := imaging.Resize(logoImage, logoSize, logoSize, imaging.Lanczos)

	canvas := imaging.Clone(qrImage)
	white := image.NewUniform(color.White)

	// Opaque backdrop so the logo never sits directly on dark modules.
	backdrop := image.Rect(logoX-logoPadding, logoY-logoPadding, logoX+logoSize+logoPadding, logoY+logoSize+logoPadding)
	draw.Draw(canvas, backdrop.Intersect(canvas.Bounds()), white, image.Point{}, draw.Src)

	canvas = imaging.Paste(canvas, resized, image.Pt(logoX, logoY))

	drawRectOutline(canvas, image.Rect(logoX-borderWidth, logoY-borderWidth, logoX+logoSize+borderWidth, logoY+logoSize+borderWidth), borderWidth, color.White)

	return encodePNG(canvas)
}

func drawRectOutline(dst draw.Image, r image.Rectangle, width int, col color.Color) {
	r = r.Intersect(dst.Bounds())
	for i := 0; i < width; i++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, r.Min.Y+i, col)
			dst.Set(x, r.Max.Y-1-i, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			dst.Set(r.Min.X+i, y, col)
			dst.Set(r.Max.X-1-i, y, col)
		}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
