package render

import (
	"image"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/rook-computer/matrixrain/internal/assets"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontLoader builds monospace faces from the embedded font and caches them
// per pixel size. Parsing falls back from opentype to freetype's truetype
// parser and finally to basicfont. Runes the parsed font has no glyph for
// (the katakana, for Go Mono) are drawn with Fallback.
type FontLoader struct {
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	// Data is the font file; empty means the embedded monospace font.
	Data []byte
	// Fallback draws uncovered runes; nil means the 12px M+ bitmap face.
	Fallback font.Face

	once   sync.Once
	otFont *opentype.Font
	ttFont *truetype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

func (l *FontLoader) parse() {
	data := l.Data
	if len(data) == 0 {
		data = assets.MonoTTF
	}
	fnt, err := opentype.Parse(data)
	if err == nil {
		l.otFont = fnt
		return
	}
	if l.Logger != nil {
		l.Logger.Errorf("font", "opentype parse failed, trying truetype: %v", err)
	}
	tt, terr := truetype.Parse(data)
	if terr != nil {
		if l.Logger != nil {
			l.Logger.Errorf("font", "truetype parse failed, using basicfont: %v", terr)
		}
		return
	}
	l.ttFont = tt
}

// Face returns a face whose em size is sizePx pixels.
func (l *FontLoader) Face(sizePx int) font.Face {
	l.once.Do(l.parse)

	l.mu.Lock()
	defer l.mu.Unlock()
	if face, ok := l.faces[sizePx]; ok {
		return face
	}
	if l.faces == nil {
		l.faces = make(map[int]font.Face)
	}

	fallback := l.Fallback
	if fallback == nil {
		fallback = bitmapfont.Face
	}
	primary := l.newFace(sizePx)
	face := &fallbackFace{primary: primary, covers: l.coverage(primary), fallback: fallback}
	l.faces[sizePx] = face
	return face
}

// Covers reports whether the parsed font itself has a glyph for r.
func (l *FontLoader) Covers(r rune) bool {
	l.once.Do(l.parse)
	return l.coverage(nil)(r)
}

// coverage picks the glyph lookup matching where primary came from.
func (l *FontLoader) coverage(primary font.Face) func(rune) bool {
	switch {
	case primary == basicfont.Face7x13 || (l.otFont == nil && l.ttFont == nil):
		return basicFontCovers
	case l.otFont != nil:
		return func(r rune) bool {
			idx, err := l.otFont.GlyphIndex(nil, r)
			return err == nil && idx != 0
		}
	default:
		return func(r rune) bool { return l.ttFont.Index(r) != 0 }
	}
}

func basicFontCovers(r rune) bool {
	for _, rg := range basicfont.Face7x13.Ranges {
		if r >= rg.Low && r < rg.High {
			return true
		}
	}
	return false
}

func (l *FontLoader) newFace(sizePx int) font.Face {
	if sizePx <= 0 {
		return basicfont.Face7x13
	}
	if l.otFont != nil {
		face, err := opentype.NewFace(l.otFont, &opentype.FaceOptions{Size: float64(sizePx), DPI: FontDPI, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
		if l.Logger != nil {
			l.Logger.Errorf("font", "font face create failed, using basicfont: %v", err)
		}
		return basicfont.Face7x13
	}
	if l.ttFont != nil {
		return truetype.NewFace(l.ttFont, &truetype.Options{Size: float64(sizePx), DPI: FontDPI, Hinting: font.HintingFull})
	}
	return basicfont.Face7x13
}

// fallbackFace draws each rune with primary when it has the glyph and with
// fallback otherwise. Metrics are the primary's.
type fallbackFace struct {
	primary  font.Face
	covers   func(rune) bool
	fallback font.Face
}

func (f *fallbackFace) pick(r rune) font.Face {
	if f.covers(r) {
		return f.primary
	}
	return f.fallback
}

func (f *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return f.pick(r).Glyph(dot, r)
}

func (f *fallbackFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return f.pick(r).GlyphBounds(r)
}

func (f *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return f.pick(r).GlyphAdvance(r)
}

func (f *fallbackFace) Kern(r0, r1 rune) fixed.Int26_6 {
	if f.covers(r0) && f.covers(r1) {
		return f.primary.Kern(r0, r1)
	}
	return 0
}

func (f *fallbackFace) Metrics() font.Metrics { return f.primary.Metrics() }

// Close releases the primary face; the fallback is shared.
func (f *fallbackFace) Close() error { return f.primary.Close() }
