package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/source"
)

func (a *app) importCommand() *cobra.Command {
	var (
		operationID string
		as          string
		partial     bool
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <document>",
		Short: "Convert an OpenAPI operation's request body into a form definition",
		Long: `Without --operation the available operation ids are listed. With it, the
operation's request body schema is written as a definition.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := definition.ParseFormat(as)
			if err != nil {
				return err
			}
			src, err := source.Parse(args[0])
			if err != nil {
				return err
			}
			importer := openapi.NewImporter(
				openapi.WithSourceOptions(a.sourceOptions()...),
				openapi.WithPartialDocuments(partial),
				openapi.WithLogger(a.log()),
			)

			if operationID == "" {
				ops, err := importer.Operations(cmd.Context(), src)
				if err != nil {
					return err
				}
				for _, id := range openapi.OperationIDs(ops) {
					op := ops[id]
					fmt.Fprintf(a.out, "%s\t%s %s\t%d field(s)\n", id, op.Method, op.Path, len(op.Fields))
				}
				return nil
			}

			def, err := importer.Definition(cmd.Context(), src, operationID)
			if err != nil {
				return err
			}
			data, err := definition.Encode(def, format)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&operationID, "operation", "o", "", "operation id to convert")
	cmd.Flags().StringVar(&as, "as", "yaml", "definition format (yaml, json, toml)")
	cmd.Flags().BoolVar(&partial, "partial", false, "accept documents that fail strict validation")
	return cmd
}
