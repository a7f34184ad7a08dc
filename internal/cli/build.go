package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/events"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/output"
	"github.com/goliatone/go-dynform/pkg/sanitize"
)

type buildFlags struct {
	readOnly bool
	prefill  string
	set      []string
	validate bool
	submit   bool
	lenient  bool
}

func (a *app) buildCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build <definition>",
		Short: "Build a form and print its extracted values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.loadDefinition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state, err := a.buildState(def, flags)
			if err != nil {
				return err
			}
			defer state.Close()

			if flags.validate {
				if report := state.Validate(); !report.Valid() {
					for _, issue := range report.Issues {
						fmt.Fprintln(a.errOut, issue.Error())
					}
					return &form.ValidationError{Report: report}
				}
			}
			if flags.submit {
				return a.submit(cmd, state)
			}
			return a.writeValues(state.Extract())
		},
	}
	a.bindBuildFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.validate, "validate", false, "run validation rules and fail on issues")
	cmd.Flags().BoolVar(&flags.submit, "submit", false, "print the submit CloudEvent instead of plain values")
	return cmd
}

func (a *app) bindBuildFlags(cmd *cobra.Command, flags *buildFlags) {
	cmd.Flags().BoolVar(&flags.readOnly, "read-only", false, "build the form read-only")
	cmd.Flags().StringVar(&flags.prefill, "prefill", "", "YAML or JSON file with a key/value prefill list")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "override a top-level value (name=value), repeatable")
	cmd.Flags().BoolVar(&flags.lenient, "lenient", false, "accept duplicate names (first declaration wins)")
}

func (a *app) buildState(def definition.Definition, flags buildFlags) (*form.FormState, error) {
	builderOpts := []form.Option{form.WithLogger(a.log())}
	if flags.lenient {
		builderOpts = append(builderOpts, form.WithLenient())
	}

	prefill := def.Prefill
	if flags.prefill != "" {
		pairs, err := readPairs(flags.prefill)
		if err != nil {
			return nil, err
		}
		prefill = pairs
	}
	prefill, err := applySets(def.Fieldset, prefill, flags.set)
	if err != nil {
		return nil, err
	}

	return def.Build(form.New(builderOpts...),
		form.WithPrefill(prefill),
		form.WithReadOnly(def.ReadOnly || flags.readOnly),
	)
}

func (a *app) encoder() (*output.Encoder, output.Format, error) {
	format, err := output.ParseFormat(a.config.GetString(keyFormat))
	if err != nil {
		return nil, "", err
	}
	enc, err := output.New(output.WithIndent(a.config.GetInt(keyIndent)))
	if err != nil {
		return nil, "", err
	}
	return enc, format, nil
}

func (a *app) writeValues(values []model.KeyValue) error {
	enc, format, err := a.encoder()
	if err != nil {
		return err
	}
	data, err := enc.Encode(values, format)
	if err != nil {
		return err
	}
	_, err = a.out.Write(data)
	return err
}

func (a *app) submit(cmd *cobra.Command, state *form.FormState) error {
	var recorder events.Recorder
	err := state.Submit(cmd.Context(), &recorder,
		form.WithSource("dynform-cli"),
		form.WithSanitizer(sanitize.New()),
	)
	if err != nil {
		return err
	}
	event, _ := recorder.Last()
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// readPairs decodes a key/value list. YAML decoding covers JSON input too.
func readPairs(path string) ([]model.KeyValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefill: %w", err)
	}
	var pairs []model.KeyValue
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode prefill %s: %w", path, err)
	}
	return pairs, nil
}

// applySets overrides or appends top-level entries from name=value strings.
// Values are converted to the type of the field's default when it has a
// non-string one.
func applySets(fields []model.Field, pairs []model.KeyValue, sets []string) ([]model.KeyValue, error) {
	if len(sets) == 0 {
		return pairs, nil
	}
	out := append([]model.KeyValue(nil), pairs...)
	for _, raw := range sets {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", raw)
		}
		typed, err := coerceSet(fields, name, value)
		if err != nil {
			return nil, err
		}
		replaced := false
		for i := range out {
			if out[i].Key == name {
				out[i].Value = typed
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, model.KeyValue{Key: name, Value: typed})
		}
	}
	return out, nil
}

func coerceSet(fields []model.Field, name, value string) (any, error) {
	for _, field := range fields {
		if field.Name != name || field.DefaultValue == nil {
			continue
		}
		typ := reflect.TypeOf(field.DefaultValue)
		if typ.Kind() == reflect.String || typ.Kind() == reflect.Slice || typ.Kind() == reflect.Map {
			return value, nil
		}
		typed, err := cast.FromType(value, typ)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		return typed, nil
	}
	return value, nil
}
