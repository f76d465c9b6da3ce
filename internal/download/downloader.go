package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/port"
)

const defaultExt = ".img"

type httpDownloader struct {
	client *http.Client
	dir    string
}

// NewHTTPDownloader saves each artwork image as dir/<id><ext>, where ext is
// taken from the image URL path.
func NewHTTPDownloader(client *http.Client, dir string) (port.Downloader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &httpDownloader{client: client, dir: dir}, nil
}

func (d *httpDownloader) Download(ctx context.Context, artwork domain.Artwork) (err error) {
	if artwork.ImageURL == "" {
		return fmt.Errorf("artwork[%s] has no image", artwork.ID)
	}

	target, err := d.target(artwork)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artwork.ImageURL, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status %d", artwork.ImageURL, resp.StatusCode)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("file.Close: %w", closeErr))
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}

	return nil
}

func (d *httpDownloader) target(artwork domain.Artwork) (string, error) {
	if artwork.ID == "" {
		return "", fmt.Errorf("artwork ID is empty")
	}

	ext := defaultExt
	if u, err := url.Parse(artwork.ImageURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}

	return filepath.Join(d.dir, url.PathEscape(artwork.ID)+ext), nil
}

type nopDownloader struct{}

// NewNopDownloader returns a downloader that does nothing.
func NewNopDownloader() port.Downloader {
	return nopDownloader{}
}

func (nopDownloader) Download(context.Context, domain.Artwork) error {
	return nil
}
