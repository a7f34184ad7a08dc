// Package dynform is the quick-start entry point: it loads a definition (or
// derives one from an OpenAPI operation), builds the form state, and encodes
// the extracted values in one call. The sub-packages expose each stage.
package dynform

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/output"
	"github.com/goliatone/go-dynform/pkg/source"
)

// ErrNoInput is returned when a Request names neither a definition nor a
// source.
var ErrNoInput = errors.New("dynform: request needs a definition or a source")

// Request describes one generation. Definition wins over Source. When
// OperationID is set the Source is read as an OpenAPI document.
type Request struct {
	Definition  *definition.Definition
	Source      source.Source
	OperationID string
	Prefill     []model.KeyValue
	ReadOnly    bool
	Format      output.Format
}

// Generator wires the loader, importer, builder, and encoder together.
type Generator struct {
	loader        *definition.Loader
	importer      *openapi.Importer
	builder       *form.Builder
	encoder       *output.Encoder
	logger        logging.Logger
	sourceOptions []source.Option
	builderOpts   []form.Option
}

// Option configures a Generator.
type Option func(*Generator)

// WithSourceOptions configures how definitions and documents are fetched.
func WithSourceOptions(options ...source.Option) Option {
	return func(g *Generator) {
		g.sourceOptions = append(g.sourceOptions, options...)
	}
}

// WithBuilderOptions forwards options to the form builder.
func WithBuilderOptions(options ...form.Option) Option {
	return func(g *Generator) {
		g.builderOpts = append(g.builderOpts, options...)
	}
}

// WithEncoder replaces the default output encoder.
func WithEncoder(encoder *output.Encoder) Option {
	return func(g *Generator) {
		if encoder != nil {
			g.encoder = encoder
		}
	}
}

// WithLogger routes diagnostics from every stage to logger.
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.OrNop(logger)
	}
}

// New builds a Generator with defaults for every stage.
func New(options ...Option) (*Generator, error) {
	g := &Generator{logger: logging.Nop{}}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.encoder == nil {
		encoder, err := output.New()
		if err != nil {
			return nil, err
		}
		g.encoder = encoder
	}
	g.loader = definition.NewLoader(g.sourceOptions...)
	g.importer = openapi.NewImporter(
		openapi.WithSourceOptions(g.sourceOptions...),
		openapi.WithLogger(g.logger),
	)
	g.builder = form.New(append([]form.Option{form.WithLogger(g.logger)}, g.builderOpts...)...)
	return g, nil
}

// Resolve returns the definition a request refers to.
func (g *Generator) Resolve(ctx context.Context, req Request) (definition.Definition, error) {
	switch {
	case req.Definition != nil:
		return *req.Definition, nil
	case req.Source == nil:
		return definition.Definition{}, ErrNoInput
	case req.OperationID != "":
		return g.importer.Definition(ctx, req.Source, req.OperationID)
	default:
		return g.loader.Load(ctx, req.Source)
	}
}

// Build resolves the request and builds its form state. Request prefill,
// when present, replaces the definition's.
func (g *Generator) Build(ctx context.Context, req Request) (*form.FormState, error) {
	def, err := g.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	extra := []form.BuildOption{}
	if req.Prefill != nil {
		extra = append(extra, form.WithPrefill(req.Prefill))
	}
	if req.ReadOnly {
		extra = append(extra, form.WithReadOnly(true))
	}
	state, err := def.Build(g.builder, extra...)
	if err != nil {
		return nil, fmt.Errorf("dynform: %w", err)
	}
	return state, nil
}

// Generate builds the form and encodes its extracted values.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	state, err := g.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	defer state.Close()
	return g.encoder.Encode(state.Extract(), req.Format)
}

// Generate is shorthand for New().Generate.
func Generate(ctx context.Context, req Request, options ...Option) ([]byte, error) {
	g, err := New(options...)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, req)
}

// Build is shorthand for building a bare fieldset with a default builder.
func Build(fieldset []model.Field, options ...form.BuildOption) (*form.FormState, error) {
	return form.Build(fieldset, options...)
}
