package ggrenderer

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	path string
	bold bool
	size float64
}

func newFaceKey(path string, bold bool, size float64) faceKey {
	if size <= 0 {
		size = 16
	}
	return faceKey{path: path, bold: bold && path == "", size: size}
}

// fontCache parses each font file once. Parsed fonts are shared by all
// canvases; faces hold glyph caches and belong to a single canvas.
type fontCache struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

func newFontCache() *fontCache {
	return &fontCache{fonts: make(map[string]*truetype.Font)}
}

// newFace builds a face for key. An empty path selects the embedded Go fonts.
func (fc *fontCache) newFace(key faceKey) (font.Face, error) {
	fc.mu.Lock()
	ttf, err := fc.load(key.path, key.bold)
	fc.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ttf, &truetype.Options{Size: key.size}), nil
}

func (fc *fontCache) load(path string, bold bool) (*truetype.Font, error) {
	name := path
	if name == "" {
		name = "go-regular"
		if bold {
			name = "go-bold"
		}
	}
	if f, ok := fc.fonts[name]; ok {
		return f, nil
	}

	var data []byte
	switch name {
	case "go-regular":
		data = goregular.TTF
	case "go-bold":
		data = gobold.TTF
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	fc.fonts[name] = f
	return f, nil
}
