package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jaevor/go-nanoid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameLen     = 120
	randomSegLen   = 8
	randomAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var randomSegment = mustGenerator()

func mustGenerator() func() string {
	gen, err := nanoid.CustomASCII(randomAlphabet, randomSegLen)
	if err != nil {
		panic(err)
	}
	return gen
}

// GenerateKey builds "{ownerID}/{unixMillis}-{random}-{name}". The random
// segment keeps two uploads of the same name in the same millisecond apart.
func GenerateKey(ownerID int64, originalName string, now time.Time) string {
	return fmt.Sprintf("%d/%d-%s-%s", ownerID, now.UnixMilli(), randomSegment(), SanitizeName(originalName))
}

// KeyOwner returns the owner prefix of a generated key.
func KeyOwner(key string) string {
	owner, _, found := strings.Cut(key, "/")
	if !found {
		return ""
	}
	return owner
}

// SanitizeName reduces a client supplied file name to a safe ASCII key
// segment, keeping the extension.
func SanitizeName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	if s == "." || s == ".." || s == "/" || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := strings.ToLower(path.Ext(s))
	base := strings.TrimSuffix(s, path.Ext(s))
	ext = cleanSegment(strings.TrimPrefix(ext, "."))

	base = cleanSegment(base)
	if base == "" {
		base = "file"
	}

	for utf8.RuneCountInString(base)+len(ext)+1 > maxNameLen && len(base) > 1 {
		base = base[:len(base)-1]
	}

	if ext == "" {
		return base
	}
	return base + "." + ext
}

func cleanSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevDash := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
