package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Kind enumerates where a document lives.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

var (
	// ErrNilSource is returned when a fetch is attempted without a source.
	ErrNilSource = errors.New("source: source is nil")
	// ErrHTTPDisabled is returned for URL sources when remote fetching was
	// not enabled.
	ErrHTTPDisabled = errors.New("source: http support disabled")
	// ErrUnsupportedKind is returned for sources of an unknown kind.
	ErrUnsupportedKind = errors.New("source: unsupported source kind")
)

// Source identifies a document by kind and location.
type Source interface {
	Kind() Kind
	Location() string
}

// Fetcher reads the raw bytes behind a Source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]byte, error)
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() Kind       { return KindFile }

// FromFile returns a Source pointing to a file path.
func FromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() Kind       { return KindFS }

// FromFS returns a Source identifying a resource inside the fetcher's fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() Kind       { return KindURL }

// FromURL validates raw and returns a URL Source.
func FromURL(raw string) (Source, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("source: empty URL")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("source: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported URL scheme %q", parsed.Scheme)
	}
	return urlSource{raw: raw}, nil
}

// Parse picks a Source for a CLI-style argument: http(s) URLs become URL
// sources and everything else a file path.
func Parse(raw string) (Source, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return FromURL(raw)
	}
	if lower == "" {
		return nil, errors.New("source: empty location")
	}
	return FromFile(raw), nil
}

// Options configures how a Fetcher resolves sources. HTTP stays disabled
// unless a client is supplied or AllowHTTP is set.
type Options struct {
	FileSystem fs.FS
	HTTPClient *http.Client
	AllowHTTP  bool
	Timeout    time.Duration
}

// Option mutates Options prior to constructing a Fetcher.
type Option func(*Options)

// WithFileSystem sets the fs.FS used for FromFS sources.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTP enables URL sources through a default client with timeout.
func WithHTTP(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTP = true
		opts.Timeout = timeout
	}
}

// NewOptions applies options in order.
func NewOptions(options ...Option) Options {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
