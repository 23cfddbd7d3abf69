// Package danbooru queries an external image-tag search endpoint.
package danbooru

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lethe-board/lethe/internal/config"
)

// ErrNoResults means the search succeeded but matched nothing.
var ErrNoResults = errors.New("danbooru: no results")

// Client fetches random images for tag searches.
type Client struct {
	endpoint string
	limit    int
	client   *http.Client

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewClient builds a client from configuration, with a bounded timeout.
func NewClient(cfg config.DanbooruConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	return &Client{
		endpoint: cfg.Endpoint,
		limit:    limit,
		client:   &http.Client{Timeout: timeout},
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RandomImage searches for posts matching the space-joined tags and
// returns the file URL of one uniformly random result. Returns
// ErrNoResults when the search matches nothing; any transport or parse
// failure is returned as an ordinary error for the caller to classify.
func (c *Client) RandomImage(ctx context.Context, tags []string) (string, error) {
	q := url.Values{}
	q.Set("tags", strings.Join(tags, " "))
	q.Set("limit", fmt.Sprintf("%d", c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("danbooru request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("danbooru search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("danbooru response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("danbooru search: unexpected status %d", resp.StatusCode)
	}

	posts := gjson.ParseBytes(body)
	if !posts.IsArray() {
		return "", fmt.Errorf("danbooru response: expected array, got %s", posts.Type)
	}

	results := posts.Array()
	if len(results) == 0 {
		return "", ErrNoResults
	}

	chosen := results[c.pick(len(results))]
	fileURL := chosen.Get("file_url").String()
	if fileURL == "" {
		return "", fmt.Errorf("danbooru response: post missing file_url")
	}

	// Older API revisions returned file_url relative to the site root.
	if !strings.HasPrefix(fileURL, "http") {
		base, err := url.Parse(c.endpoint)
		if err != nil {
			return "", fmt.Errorf("danbooru endpoint: %w", err)
		}
		fileURL = base.Scheme + "://" + base.Host + fileURL
	}

	return fileURL, nil
}

func (c *Client) pick(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entropy.Intn(n)
}
