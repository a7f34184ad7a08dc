package openapi

import (
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/source"
)

// Option configures an Importer.
type Option func(*Importer)

// WithReferenceResolution allows external $refs and validates documents
// before mapping them.
func WithReferenceResolution(enabled bool) Option {
	return func(i *Importer) {
		i.options.ResolveReferences = enabled
	}
}

// WithPartialDocuments accepts documents without operations.
func WithPartialDocuments(enabled bool) Option {
	return func(i *Importer) {
		i.options.AllowPartialDocuments = enabled
	}
}

// WithLabeler derives labels for properties that have no title.
func WithLabeler(labeler func(string) string) Option {
	return func(i *Importer) {
		i.options.Labeler = labeler
	}
}

// WithSourceOptions configures how documents are fetched.
func WithSourceOptions(options ...source.Option) Option {
	return func(i *Importer) {
		i.sourceOptions = append(i.sourceOptions, options...)
	}
}

// WithFetcher replaces the default fetch strategies.
func WithFetcher(fetcher source.Fetcher) Option {
	return func(i *Importer) {
		i.fetcher = fetcher
	}
}

// WithLogger routes import diagnostics to logger.
func WithLogger(logger logging.Logger) Option {
	return func(i *Importer) {
		i.logger = logging.OrNop(logger)
	}
}
