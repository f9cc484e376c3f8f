package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidKey       = errors.New("invalid object key")
	ErrInvalidSignature = errors.New("invalid or expired signature")
)

// LocalStorage keeps payloads on the local filesystem. Its signed URLs point
// at the service's own /blobs endpoint and carry an HMAC over the method, key
// and expiry.
type LocalStorage struct {
	basePath  string
	publicURL string
	secret    []byte
	logger    *zap.Logger
}

func NewLocalStorage(basePath, publicURL, signingSecret string, logger *zap.Logger) (*LocalStorage, error) {
	if signingSecret == "" {
		return nil, fmt.Errorf("local storage: signing secret is required")
	}
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
		secret:    []byte(signingSecret),
		logger:    logger,
	}, nil
}

func (ls *LocalStorage) getPathFromKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(key)), nil
}

// Put writes to a temporary file first so a failed upload never leaves a
// partial object under the final key.
func (ls *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(filePath)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if size >= 0 && written != size {
		return fmt.Errorf("object %s: expected %d bytes, got %d", key, size, written)
	}

	return os.Rename(tmp.Name(), filePath)
}

func (ls *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (ls *LocalStorage) Size(ctx context.Context, key string) (int64, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
	}
	return info.Size(), nil
}

func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

func (ls *LocalStorage) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return ls.signedURL("GET", key, ttl, time.Now())
}

func (ls *LocalStorage) SignedPutURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error) {
	return ls.signedURL("PUT", key, ttl, time.Now())
}

func (ls *LocalStorage) signedURL(method, key string, ttl time.Duration, now time.Time) (string, error) {
	if _, err := ls.getPathFromKey(key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	expires := now.Add(ttl).Unix()
	query := url.Values{}
	query.Set("expires", strconv.FormatInt(expires, 10))
	query.Set("signature", ls.sign(method, key, expires))

	return ls.publicURL + "/blobs/" + escapeKey(key) + "?" + query.Encode(), nil
}

func (ls *LocalStorage) sign(method, key string, expires int64) string {
	mac := hmac.New(sha256.New, ls.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a link produced by SignedGetURL or SignedPutURL.
func (ls *LocalStorage) VerifySignature(method, key, expires, signature string, now time.Time) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if now.Unix() > exp {
		return ErrInvalidSignature
	}

	expected, err := hex.DecodeString(ls.sign(method, key, exp))
	if err != nil {
		return ErrInvalidSignature
	}
	given, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, given) {
		return ErrInvalidSignature
	}
	return nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
