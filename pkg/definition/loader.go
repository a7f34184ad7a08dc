package definition

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/internal/fetch"
	"github.com/goliatone/go-dynform/pkg/source"
)

// Loader reads definitions from any source.Source.
type Loader struct {
	fetcher source.Fetcher
}

// NewLoader builds a Loader over the default fetch strategies. URL sources
// require source.WithHTTP or source.WithHTTPClient.
func NewLoader(options ...source.Option) *Loader {
	return &Loader{fetcher: fetch.New(source.NewOptions(options...))}
}

// NewLoaderWithFetcher wraps a custom fetcher.
func NewLoaderWithFetcher(fetcher source.Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches and decodes one definition. The format follows the location's
// extension; an ID missing from the document defaults to the file's base
// name.
func (l *Loader) Load(ctx context.Context, src source.Source) (Definition, error) {
	if src == nil {
		return Definition{}, source.ErrNilSource
	}
	data, err := l.fetcher.Fetch(ctx, src)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: %w", err)
	}
	format, _ := FormatFromPath(locationPath(src))
	def, err := Decode(data, format)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", src.Location(), err)
	}
	def.Source = src.Location()
	if strings.TrimSpace(def.ID) == "" {
		def.ID = baseName(locationPath(src))
	}
	return def, nil
}

// Store holds definitions keyed by ID.
type Store struct {
	definitions map[string]Definition
}

// LoadFS walks fsys and decodes every YAML, JSON, and TOML file. Duplicate
// IDs are rejected. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{definitions: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		format, ok := FormatFromPath(name)
		if !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", name, err)
		}
		def, err := Decode(data, format)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		def.Source = name
		id := strings.TrimSpace(def.ID)
		if id == "" {
			id = baseName(name)
			def.ID = id
		}
		if existing, exists := store.definitions[id]; exists {
			return fmt.Errorf("%w %q (files %s and %s)", ErrDuplicateID, id, existing.Source, name)
		}
		store.definitions[id] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Get returns the definition with id.
func (s *Store) Get(id string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.definitions[id]
	return def, ok
}

// IDs lists the stored IDs in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.definitions))
	for id := range s.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many definitions are stored.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.definitions)
}

// Validate runs Definition.Validate on every entry and returns the failures
// keyed by ID.
func (s *Store) Validate() map[string]error {
	out := make(map[string]error)
	for _, id := range s.IDs() {
		if err := s.definitions[id].Validate(); err != nil {
			out[id] = err
		}
	}
	return out
}

func locationPath(src source.Source) string {
	loc := src.Location()
	if src.Kind() == source.KindURL {
		if idx := strings.IndexAny(loc, "?#"); idx >= 0 {
			loc = loc[:idx]
		}
	}
	return strings.ReplaceAll(loc, "\\", "/")
}

func baseName(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
