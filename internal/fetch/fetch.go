// Package fetch implements source.Fetcher with file, fs.FS, and HTTP
// strategies.
package fetch

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-dynform/pkg/source"
)

// Fetcher dispatches on the source kind.
type Fetcher struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ source.Fetcher = (*Fetcher)(nil)

// New constructs a Fetcher from resolved options.
func New(options source.Options) *Fetcher {
	timeout := options.Timeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTP:
		client = &http.Client{Timeout: timeout}
	}

	return &Fetcher{fs: options.FileSystem, http: client, timeout: timeout}
}

// Fetch reads the bytes behind src.
func (f *Fetcher) Fetch(ctx context.Context, src source.Source) ([]byte, error) {
	if src == nil {
		return nil, source.ErrNilSource
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case source.KindFile:
		data, err = readFile(ctx, src.Location())
	case source.KindFS:
		data, err = readFS(ctx, f.fs, src.Location())
	case source.KindURL:
		if f.http == nil {
			return nil, source.ErrHTTPDisabled
		}
		data, err = readHTTP(ctx, f.http, src.Location(), f.timeout)
	default:
		return nil, fmt.Errorf("%w %q", source.ErrUnsupportedKind, src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", src.Kind(), src.Location(), err)
	}
	return data, nil
}
