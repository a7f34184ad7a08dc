// Package parser turns OpenAPI request bodies into fieldsets using
// kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrNoOperations is returned when a document yields no usable operation.
var ErrNoOperations = errors.New("openapi parser: no operations extracted")

// Options tunes parsing.
type Options struct {
	// ResolveReferences allows external $refs and validates the document.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without paths or operations.
	AllowPartialDocuments bool
	// Labeler derives labels for properties without a title. Nil keeps
	// labels empty so hosts fall back to Field.DisplayLabel.
	Labeler func(string) string
}

// Operation is one OpenAPI operation with its request body mapped to fields.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Fields      []model.Field
}

// Parser implements the OpenAPI to fieldset conversion.
type Parser struct {
	options Options
}

// New constructs a Parser.
func New(options Options) *Parser {
	return &Parser{options: options}
}

// Operations loads raw and converts every operation keyed by operationId.
// Operations without an id are keyed "method:path".
func (p *Parser) Operations(ctx context.Context, raw []byte) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	if (spec.Paths == nil || spec.Paths.Len() == 0) && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi parser: document does not contain any paths")
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			p.collect(operations, "GET", path, item.Get)
			p.collect(operations, "PUT", path, item.Put)
			p.collect(operations, "POST", path, item.Post)
			p.collect(operations, "DELETE", path, item.Delete)
			p.collect(operations, "PATCH", path, item.Patch)
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, ErrNoOperations
	}
	return operations, nil
}

// IDs returns operation ids in sorted order.
func IDs(operations map[string]Operation) []string {
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Parser) collect(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	conv := newConverter(p.options.Labeler)
	target[id] = Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Fields:      conv.fields(requestSchema(operation.RequestBody), ""),
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
