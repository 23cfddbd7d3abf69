// Package probe decides whether submitted text is a fetchable image URI
// and derives a thumbnail from it.
//
// Probing is strictly best effort: any network, scheme or decode failure
// means "no thumbnail", never an error. A memory whose text looks like an
// image link but cannot be fetched is stored as plain text.
package probe

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	"github.com/lethe-board/lethe/internal/config"
)

// Prober reports an optional thumbnail for a URI.
type Prober interface {
	Probe(ctx context.Context, uri string) *string
}

var extensionWhitelist = []string{".jpg", ".jpeg", ".png", ".gif"}

// HTTPProber probes image URIs over HTTP and produces deliberately
// degraded base64 JPEG thumbnails.
type HTTPProber struct {
	client *http.Client
	cfg    config.ThumbConfig

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewHTTPProber returns a prober with a bounded request timeout.
func NewHTTPProber(cfg config.ThumbConfig) *HTTPProber {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProber{
		client:  &http.Client{Timeout: timeout},
		cfg:     cfg,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Probe returns a base64 JPEG thumbnail when uri ends in a whitelisted
// image extension and the resource answers an existence check, nil
// otherwise.
func (p *HTTPProber) Probe(ctx context.Context, uri string) *string {
	if !WhitelistedExtension(uri) {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(uri), "http") {
		return nil
	}
	if !p.exists(ctx, uri) {
		return nil
	}

	thumb, err := p.thumbnail(ctx, uri)
	if err != nil {
		return nil
	}
	return &thumb
}

// WhitelistedExtension reports whether the lowercase URI ends in one of
// the allowed image extensions.
func WhitelistedExtension(uri string) bool {
	lower := strings.ToLower(uri)
	for _, ext := range extensionWhitelist {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (p *HTTPProber) exists(ctx context.Context, uri string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (p *HTTPProber) thumbnail(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return "", err
	}

	scaled := p.scaleToFit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: p.quality()}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// scaleToFit shrinks src to fit inside the configured bounding box,
// preserving aspect ratio. Images already inside the box pass through.
func (p *HTTPProber) scaleToFit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	maxW, maxH := p.cfg.MaxWidth, p.cfg.MaxHeight
	if w <= maxW && h <= maxH {
		return src
	}

	ratioW := float64(maxW) / float64(w)
	ratioH := float64(maxH) / float64(h)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	dw := int(float64(w) * ratio)
	dh := int(float64(h) * ratio)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// quality picks a random JPEG quality in the configured range. The low
// range is what gives thumbnails their degraded look.
func (p *HTTPProber) quality() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	lo, hi := p.cfg.MinQuality, p.cfg.MaxQuality
	if hi <= lo {
		return lo
	}
	return lo + p.entropy.Intn(hi-lo+1)
}
