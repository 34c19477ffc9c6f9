package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

type Config struct {
	Content       string
	Width         int // Output width and height in pixels
	Margin        int // Quiet zone in modules
	RecoveryLevel qrcode.RecoveryLevel
	Background    color.Color
	Foreground    color.Color

	LogoPath       string
	LogoScale      float64 // Logo width relative to Width
	LogoBackground color.Color
}

// Ticket is the entry ticket preset: high error correction, 300px, two-module margin.
var Ticket = Config{
	Width:          300,
	Margin:         2,
	RecoveryLevel:  qrcode.Highest,
	Background:     color.White,
	Foreground:     color.Black,
	LogoScale:      0.18,
	LogoBackground: color.White,
}

// Generate renders the QR code for c.Content as a PNG.
//
// Modules are drawn on an integer pixel grid so the image stays sharp; any pixels
// left over after scaling are split evenly around the code.
func (c Config) Generate() ([]byte, error) {
	if c.Content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}

	q, err := qrcode.New(c.Content, c.RecoveryLevel)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	modules := len(bitmap) + 2*c.Margin
	scale := c.Width / modules
	if scale < 1 {
		return nil, fmt.Errorf("width %d is too small for %d modules", c.Width, modules)
	}
	offset := float64((c.Width-scale*modules)/2 + c.Margin*scale)

	dc := gg.NewContext(c.Width, c.Width)
	dc.SetColor(c.Background)
	dc.Clear()

	dc.SetColor(c.Foreground)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				dc.DrawRectangle(offset+float64(x*scale), offset+float64(y*scale), float64(scale), float64(scale))
			}
		}
	}
	dc.Fill()

	if c.LogoPath != "" {
		if err = c.drawLogo(dc); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Config) drawLogo(dc *gg.Context) error {
	logo, err := gg.LoadImage(c.LogoPath)
	if err != nil {
		return fmt.Errorf("failed to load logo: %w", err)
	}
	size := int(float64(c.Width) * c.LogoScale)
	if size <= 0 {
		return nil
	}

	pad := size / 10
	center := float64(c.Width) / 2
	bg := c.LogoBackground
	if bg == nil {
		bg = c.Background
	}
	dc.SetColor(bg)
	dc.DrawRoundedRectangle(center-float64(size)/2-float64(pad), center-float64(size)/2-float64(pad), float64(size+2*pad), float64(size+2*pad), float64(pad))
	dc.Fill()

	resized := resize.Resize(uint(size), uint(size), logo, resize.Lanczos3)
	dc.DrawImageAnchored(resized, int(center), int(center), 0.5, 0.5)
	return nil
}

// DataURI wraps PNG bytes as a data:image/png;base64 URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
