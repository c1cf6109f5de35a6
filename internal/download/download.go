// Package download fetches source documents into temporary files.
package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
)

// Fetcher downloads url to a local file. cleanup removes everything Fetch
// created and is never nil.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (localPath string, cleanup func(), err error)
}

// Client is an HTTP Fetcher.
type Client struct {
	http      *http.Client
	userAgent string
	tempDir   string
	logger    *slog.Logger
}

func NewClient(cfg common.DownloadConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		tempDir:   cfg.TempDir,
		logger:    logger,
	}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (string, func(), error) {
	noop := func() {}
	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", noop, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Info("download.request", "req_id", reqID, "url", rawURL)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("download.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", noop, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("download.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		c.logger.Error("download.status", "req_id", reqID, "status", resp.StatusCode)
		return "", noop, fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode)
	}

	dir, err := os.MkdirTemp(c.tempDir, "uefiscdi-dl-*")
	if err != nil {
		return "", noop, fmt.Errorf("create download dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("download.cleanup_failed", "dir", dir, "error", err)
		}
	}

	// peek at the first bytes so files without an extension can be typed
	head := make([]byte, 8)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		cleanup()
		return "", noop, fmt.Errorf("%w: read body: %v", common.ErrUnavailable, err)
	}
	head = head[:n]

	name := filename(rawURL, resp.Header.Get("Content-Disposition"), resp.Header.Get("Content-Type"), head)
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("create %q: %w", dst, err)
	}

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), resp.Body))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%w: write %q: %v", common.ErrUnavailable, dst, err)
	}

	c.logger.Info("download.done",
		"req_id", reqID,
		"path", dst,
		"bytes", written,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return dst, cleanup, nil
}

// filename picks a local name: Content-Disposition, then the URL path, with
// an extension inferred from the URL suffix, the content type or magic bytes.
func filename(rawURL, disposition, contentType string, head []byte) string {
	name := ""
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = filepath.Base(params["filename"])
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document"
		if u, err := url.Parse(rawURL); err == nil {
			if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
				name = base
			}
		}
	}

	if path.Ext(name) == "" {
		name += extension(rawURL, contentType, head)
	}
	return name
}

func extension(rawURL, contentType string, head []byte) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return strings.ToLower(ext)
		}
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/pdf", bytes.HasPrefix(head, []byte("%PDF")):
		return ".pdf"
	case strings.Contains(mediaType, "spreadsheet"),
		strings.Contains(mediaType, "excel"),
		bytes.HasPrefix(head, []byte("PK\x03\x04")),
		// encrypted workbooks are OLE compound files
		bytes.HasPrefix(head, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		return ".xlsx"
	}
	return ""
}
