// Package icon draws the tray battery glyphs.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	pkgerrors "github.com/pkg/errors"
	ico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/vector"

	"github.com/headset-battery-indicator/headset-battery-indicator/pkg/headset"
)

// Theme is the taskbar colour scheme the glyph is drawn for.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

func (t Theme) String() string {
	if t == ThemeLight {
		return "light"
	}
	return "dark"
}

type Format int

const (
	FormatICO Format = iota
	FormatPNG
)

// DefaultSize is the edge length in pixels of rendered glyphs.
const DefaultSize = 32

// Key identifies one glyph. Two statuses with the same Key look identical.
type Key struct {
	Level     headset.Level
	Charging  bool
	Connected bool
	Theme     Theme
}

// KeyFor returns the glyph key of a status. Disconnected headsets collapse
// onto a single glyph per theme.
func KeyFor(s headset.Status, theme Theme) Key {
	if !s.Connected {
		return Key{Level: headset.LevelUnknown, Theme: theme}
	}
	return Key{Level: s.Level, Charging: s.Charging, Connected: true, Theme: theme}
}

// UnavailableKey is the glyph shown for errors and when no device is found.
func UnavailableKey(theme Theme) Key {
	return Key{Level: headset.LevelUnknown, Theme: theme}
}

var (
	colorRed    = color.RGBA{0xE8, 0x11, 0x23, 0xFF}
	colorAmber  = color.RGBA{0xF7, 0x9A, 0x0C, 0xFF}
	colorGreen  = color.RGBA{0x10, 0xB0, 0x3C, 0xFF}
	colorYellow = color.RGBA{0xFF, 0xC8, 0x3D, 0xFF}
)

func outlineColor(t Theme) color.NRGBA {
	if t == ThemeLight {
		return color.NRGBA{0x1F, 0x1F, 0x1F, 0xFF}
	}
	return color.NRGBA{0xF2, 0xF2, 0xF2, 0xFF}
}

func fillColor(k Key) color.RGBA {
	switch {
	case k.Charging:
		return colorGreen
	case k.Level <= headset.Level25:
		return colorRed
	case k.Level == headset.Level50:
		return colorAmber
	default:
		return colorGreen
	}
}

// Render draws the glyph for k on a size x size transparent canvas. The
// layout is designed on a 32 px grid and scaled.
func Render(k Key, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	sc := func(v int) int { return v * size / 32 }
	rect := func(x0, y0, x1, y1 int) image.Rectangle {
		return image.Rect(sc(x0), sc(y0), sc(x1), sc(y1))
	}
	fill := func(r image.Rectangle, c color.Color) {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	}

	outline := outlineColor(k.Theme)
	if !k.Connected {
		outline.A = 0x90
	}

	// body and terminal
	fill(rect(1, 8, 27, 24), outline)
	fill(rect(3, 10, 25, 22), color.Transparent)
	fill(rect(27, 12, 30, 20), outline)

	switch {
	case !k.Connected:
		slash(img, size, colorRed)
	case k.Level == headset.LevelUnknown:
		// three dots for "connected, level not reported"
		for _, x := range []int{7, 13, 19} {
			fill(rect(x, 15, x+3, 18), outline)
		}
	default:
		segments := int(k.Level) / 25
		if segments == 0 {
			// keep an empty battery visible as a warning sliver
			fill(rect(5, 12, 7, 20), colorRed)
		}
		for i := 0; i < segments; i++ {
			x := 5 + i*5
			fill(rect(x, 12, x+4, 20), fillColor(k))
		}
	}

	if k.Connected && k.Charging {
		bolt(img, size, colorYellow, outline)
	}
	return img
}

func polygon(img draw.Image, size int, c color.Color, pts ...[2]float32) {
	s := float32(size) / 32
	z := vector.NewRasterizer(size, size)
	z.DrawOp = draw.Over
	z.MoveTo(pts[0][0]*s, pts[0][1]*s)
	for _, p := range pts[1:] {
		z.LineTo(p[0]*s, p[1]*s)
	}
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

func bolt(img draw.Image, size int, c, edge color.Color) {
	pts := [][2]float32{{16, 3}, {8, 17}, {14, 17}, {12, 29}, {21, 14}, {15, 14}, {18, 3}}
	// an enlarged copy behind the bolt keeps it readable over the fill
	grown := make([][2]float32, len(pts))
	for i, p := range pts {
		grown[i] = [2]float32{14.5 + (p[0]-14.5)*1.2, 16 + (p[1]-16)*1.12}
	}
	polygon(img, size, edge, grown...)
	polygon(img, size, c, pts...)
}

func slash(img draw.Image, size int, c color.Color) {
	polygon(img, size, c, [2]float32{4, 27}, [2]float32{7, 29}, [2]float32{28, 5}, [2]float32{25, 3})
}

// Encode writes the glyph for k in the given format.
func Encode(k Key, size int, format Format) ([]byte, error) {
	img := Render(k, size)
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatICO:
		err = ico.Encode(&buf, img)
	case FormatPNG:
		err = png.Encode(&buf, img)
	default:
		return nil, pkgerrors.Errorf("unknown icon format %d", format)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to encode icon %+v", k)
	}
	return buf.Bytes(), nil
}

// Cache memoizes encoded glyphs.
type Cache struct {
	mu     sync.Mutex
	size   int
	format Format
	m      map[Key][]byte
}

func NewCache(size int, format Format) *Cache {
	return &Cache{size: size, format: format, m: make(map[Key][]byte)}
}

// NewNativeCache returns a Cache producing the format the tray expects on
// this platform.
func NewNativeCache() *Cache {
	return NewCache(DefaultSize, NativeFormat)
}

func (c *Cache) Get(k Key) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.m[k]; ok {
		return b, nil
	}
	b, err := Encode(k, c.size, c.format)
	if err != nil {
		return nil, err
	}
	c.m[k] = b
	return b, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
