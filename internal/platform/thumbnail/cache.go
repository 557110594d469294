package thumbnail

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

const (
	// maxImageBytes bounds how much of a remote image is read.
	maxImageBytes = 10 << 20
	// maxImagePixels bounds the decoded size of a remote image.
	maxImagePixels = 40_000_000
)

// Cache downloads remote thumbnails, resizes them and stores them as JPEG files.
type Cache struct {
	httpClient *http.Client
	dir        string
	urlPrefix  string
	width      uint
}

// NewCache creates a Cache writing into dir and serving files under urlPrefix.
func NewCache(dir, urlPrefix string, width uint, httpClient *http.Client) *Cache {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if width == 0 {
		width = 400
	}
	return &Cache{httpClient: httpClient, dir: dir, urlPrefix: urlPrefix, width: width}
}

// Hash calculates the SHA256 hash of a thumbnail source URL.
func Hash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Store fetches src and returns the local URL of the resized copy. A copy
// that already exists is reused.
func (c *Cache) Store(ctx context.Context, src string) (string, error) {
	name := Hash(src) + ".jpg"
	localURL := c.urlPrefix + "/" + name
	path := filepath.Join(c.dir, name)
	if _, err := os.Stat(path); err == nil {
		return localURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download thumbnail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", fmt.Errorf("image dimensions %dx%d exceed the allowed size", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if uint(img.Bounds().Dx()) > c.width {
		img = resize.Resize(c.width, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "thumb-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: 85}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return localURL, nil
}
