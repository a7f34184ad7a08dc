package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/renderers/tui"
)

func (a *app) fillCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "fill <definition>",
		Short: "Fill a form interactively and print the values",
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

			enc, format, err := a.encoder()
			if err != nil {
				return err
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(a.errOut)),
				tui.WithEncoder(enc),
				tui.WithOutputFormat(format),
				tui.WithLogger(a.log()),
			)
			if err != nil {
				return err
			}
			data, err := renderer.Render(cmd.Context(), state)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	a.bindBuildFlags(cmd, &flags)
	return cmd
}
