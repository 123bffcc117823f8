// Package fetch downloads icon bytes for the cache. Remote fetches retry
// transient failures; file:// URLs are read straight from disk.
package fetch

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "plugindepot (+https://github.com/plugindepot/plugindepot)"

// Icons larger than this are junk or an attack, not artwork.
const maxIconBytes = 20 << 20

type Client struct {
	http *retryablehttp.Client
}

func New() *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 5
	retryClient.HTTPClient.Timeout = 30 * time.Second
	return &Client{http: retryClient}
}

// Bytes downloads the resource at url.
func (c *Client) Bytes(url string) ([]byte, error) {
	if strings.HasPrefix(url, "file://") {
		return os.ReadFile(filepath.FromSlash(strings.TrimPrefix(url, "file://")))
	}

	req, err := retryablehttp.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxIconBytes {
		return nil, fmt.Errorf("icon at %s exceeds %d bytes", url, maxIconBytes)
	}
	return data, nil
}
