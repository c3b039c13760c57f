// Package assetkey generates storage keys for uploaded assets.
//
// Keys never reuse the client-supplied filename directly: only its sanitized
// extension survives, appended to a timestamp plus a random suffix so
// concurrent uploads of identically-named files cannot collide.
package assetkey

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for asset key generation strategies
type Generator interface {
	// GenerateKey creates a storage key for an upload with the given
	// original filename.
	GenerateKey(fileName string) string
}

// TimestampGenerator produces keys like "blog-1712345678901-3f2a9c1db04e.png":
// a prefix, a millisecond timestamp, a random suffix, and the sanitized
// lowercase extension of the original filename.
type TimestampGenerator struct {
	Prefix string
}

// NewTimestampGenerator returns the default generator used for blog images.
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{Prefix: "blog"}
}

func (g *TimestampGenerator) GenerateKey(fileName string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s%s", g.Prefix, time.Now().UnixMilli(), suffix, sanitizeExt(fileName))
}

// CustomFuncGenerator allows callers to provide their own key generation
// function, mainly useful in tests.
type CustomFuncGenerator struct {
	GenerateFunc func(fileName string) string
}

func NewCustomFuncGenerator(fn func(fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(fileName string) string {
	return g.GenerateFunc(fileName)
}

// sanitizeExt extracts the lowercase extension and strips every character
// outside [a-z0-9.]. An empty or dot-only extension yields "".
func sanitizeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() <= 1 {
		return ""
	}
	return b.String()
}
