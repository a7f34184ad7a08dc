package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/internal/fetch"
	"github.com/goliatone/go-dynform/internal/openapi/parser"
	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/source"
)

var (
	// ErrNotOpenAPI is returned for payloads that do not look like OpenAPI.
	ErrNotOpenAPI = errors.New("openapi: document is not an OpenAPI description")
	// ErrOperationNotFound is returned when the requested operation is absent.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no form fields.
	ErrNoRequestBody = errors.New("openapi: operation has no request body fields")
)

// Operation is an OpenAPI operation with its request body mapped to fields.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Fields      []model.Field
}

// Importer fetches OpenAPI documents and maps their operations to fieldsets.
type Importer struct {
	options       parser.Options
	sourceOptions []source.Option
	fetcher       source.Fetcher
	logger        logging.Logger
}

// NewImporter builds an Importer. References are resolved and labels derived
// from property names unless overridden.
func NewImporter(options ...Option) *Importer {
	i := &Importer{
		options: parser.Options{
			ResolveReferences: true,
			Labeler:           model.DefaultLabeler,
		},
		logger: logging.Nop{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	if i.fetcher == nil {
		i.fetcher = fetch.New(source.NewOptions(i.sourceOptions...))
	}
	return i
}

// Operations fetches src and maps every operation.
func (i *Importer) Operations(ctx context.Context, src source.Source) (map[string]Operation, error) {
	raw, err := i.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return i.Parse(ctx, raw)
}

// Parse maps every operation of an in-memory document.
func (i *Importer) Parse(ctx context.Context, raw []byte) (map[string]Operation, error) {
	if !Detect(raw) {
		return nil, ErrNotOpenAPI
	}
	parsed, err := parser.New(i.options).Operations(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Operation, len(parsed))
	for id, op := range parsed {
		out[id] = Operation(op)
	}
	i.logger.Debug("openapi: operations parsed", "count", len(out))
	return out, nil
}

// Fieldset returns the fields of one operation.
func (i *Importer) Fieldset(ctx context.Context, src source.Source, operationID string) ([]model.Field, error) {
	op, err := i.operation(ctx, src, operationID)
	if err != nil {
		return nil, err
	}
	return op.Fields, nil
}

// Definition wraps one operation's fields in a form definition whose ID is
// the operation id.
func (i *Importer) Definition(ctx context.Context, src source.Source, operationID string) (definition.Definition, error) {
	op, err := i.operation(ctx, src, operationID)
	if err != nil {
		return definition.Definition{}, err
	}
	return definition.Definition{
		ID:          op.ID,
		Title:       op.Summary,
		Description: op.Description,
		Fieldset:    op.Fields,
	}, nil
}

func (i *Importer) operation(ctx context.Context, src source.Source, operationID string) (Operation, error) {
	ops, err := i.Operations(ctx, src)
	if err != nil {
		return Operation{}, err
	}
	op, ok := ops[operationID]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %q (available: %s)", ErrOperationNotFound, operationID, strings.Join(OperationIDs(ops), ", "))
	}
	if len(op.Fields) == 0 {
		return Operation{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	return op, nil
}

// OperationIDs returns the ids of ops in sorted order.
func OperationIDs(ops map[string]Operation) []string {
	converted := make(map[string]parser.Operation, len(ops))
	for id, op := range ops {
		converted[id] = parser.Operation(op)
	}
	return parser.IDs(converted)
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
	}
	lower := strings.ToLower(string(trimmed))
	return strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:")
}
