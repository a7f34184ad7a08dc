package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/definition"
)

// ErrLintFailed is returned when any definition has problems.
var ErrLintFailed = errors.New("lint failed")

type violation struct {
	location string
	message  string
}

func (a *app) lintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <path>...",
		Short: "Check definition files or directories for structural problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var violations []violation
			checked := 0
			for _, path := range args {
				found, n, err := a.lintPath(cmd.Context(), path)
				if err != nil {
					return err
				}
				checked += n
				violations = append(violations, found...)
			}

			sort.Slice(violations, func(i, j int) bool {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			})
			for _, v := range violations {
				fmt.Fprintf(a.errOut, "%s: %s\n", v.location, v.message)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%w: %d problem(s)", ErrLintFailed, len(violations))
			}
			fmt.Fprintf(a.out, "%d definition(s) ok\n", checked)
			return nil
		},
	}
}

func (a *app) lintPath(ctx context.Context, path string) ([]violation, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if !info.IsDir() {
		def, err := a.loadDefinition(ctx, path)
		if err != nil {
			return []violation{{location: path, message: err.Error()}}, 1, nil
		}
		if err := def.Validate(); err != nil {
			return []violation{{location: path, message: err.Error()}}, 1, nil
		}
		return nil, 1, nil
	}

	store, err := definition.LoadFS(os.DirFS(path))
	if err != nil {
		return []violation{{location: path, message: err.Error()}}, 0, nil
	}
	var out []violation
	for id, problem := range store.Validate() {
		location := id
		if def, ok := store.Get(id); ok && def.Source != "" {
			location = filepath.Join(path, def.Source)
		}
		out = append(out, violation{location: location, message: problem.Error()})
	}
	return out, store.Len(), nil
}
