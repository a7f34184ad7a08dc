// Package cli implements the dynform command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/source"
)

const envPrefix = "DYNFORM"

// Configuration keys. Each is settable by flag, DYNFORM_* environment
// variable, or config file.
const (
	keyLogLevel    = "log-level"
	keyFormat      = "format"
	keyIndent      = "indent"
	keyAllowHTTP   = "allow-http"
	keyHTTPTimeout = "http-timeout"
	keyDebounce    = "debounce"
)

type app struct {
	cfgFile string
	config  *viper.Viper
	logger  *log.Logger
	out     io.Writer
	errOut  io.Writer
}

// NewRootCommand assembles the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := newApp(out, errOut)

	root := &cobra.Command{
		Use:   "dynform",
		Short: "Build, fill, and lint dynamic form definitions",
		Long: `
dynform turns form definitions (YAML, JSON, or TOML field lists) into live
form states: toggles enable and disable their children, prefill and error
lists are mapped onto fields, and values are extracted in declaration order.

Available Configuration Variables:
  - LOG_LEVEL: logrus level (default: "warn").
  - FORMAT: output format for values: json, yaml, toml, form, pretty (default: "json").
  - INDENT: spaces used by JSON output, 0 for compact (default: 2).
  - ALLOW_HTTP: allow http(s) definition and document sources (default: false).
  - HTTP_TIMEOUT: timeout for remote sources (default: 10s).
  - DEBOUNCE: delay applied to change notifications in watch mode (default: 250ms).

Usage:
  Use the --config flag to specify a configuration file, or set the above variables
  in the environment with the DYNFORM_ prefix.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.dynform.yaml)")
	flags.String(keyLogLevel, "warn", "log level (debug, info, warn, error)")
	flags.StringP(keyFormat, "f", "json", "output format (json, yaml, toml, form, pretty)")
	flags.Int(keyIndent, 2, "JSON indentation, 0 for compact output")
	flags.Bool(keyAllowHTTP, false, "allow http(s) sources")
	flags.Duration(keyHTTPTimeout, 10*time.Second, "timeout for remote sources")
	for _, key := range []string{keyLogLevel, keyFormat, keyIndent, keyAllowHTTP, keyHTTPTimeout} {
		_ = a.config.BindPFlag(key, flags.Lookup(key))
	}
	a.config.SetDefault(keyDebounce, 250*time.Millisecond)

	root.SetOut(out)
	root.SetErr(errOut)
	root.AddCommand(
		a.buildCommand(),
		a.fillCommand(),
		a.lintCommand(),
		a.importCommand(),
		a.watchCommand(),
	)
	return root
}

func newApp(out, errOut io.Writer) *app {
	a := &app{
		config: viper.New(),
		logger: log.New(),
		out:    out,
		errOut: errOut,
	}
	a.logger.SetOutput(errOut)
	return a
}

// Execute runs the root command against the process streams.
func Execute() {
	cobra.CheckErr(NewRootCommand(os.Stdout, os.Stderr).Execute())
}

func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		if _, err := os.Stat(a.cfgFile); os.IsNotExist(err) {
			return fmt.Errorf("config file does not exist: %s", a.cfgFile)
		}
		a.config.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.config.AddConfigPath(home)
		a.config.SetConfigType("yaml")
		a.config.SetConfigName(".dynform")
	}

	a.config.SetEnvPrefix(envPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()
	if err := a.config.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := log.ParseLevel(a.config.GetString(keyLogLevel))
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", keyLogLevel, err)
	}
	a.logger.SetLevel(level)
	a.logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if used := a.config.ConfigFileUsed(); used != "" {
		a.logger.Infof("Using config file: %s", used)
	}
	a.logger.WithField("command", cmd.Name()).Debug("configuration loaded")
	return nil
}

func (a *app) log() logging.Logger {
	return logging.NewLogrus(a.logger)
}

func (a *app) sourceOptions() []source.Option {
	if !a.config.GetBool(keyAllowHTTP) {
		return nil
	}
	return []source.Option{source.WithHTTP(a.config.GetDuration(keyHTTPTimeout))}
}

func (a *app) loadDefinition(ctx context.Context, location string) (definition.Definition, error) {
	src, err := source.Parse(location)
	if err != nil {
		return definition.Definition{}, err
	}
	def, err := definition.NewLoader(a.sourceOptions()...).Load(ctx, src)
	if err != nil {
		return definition.Definition{}, err
	}
	a.logger.WithFields(log.Fields{"id": def.ID, "fields": len(def.Fieldset)}).Debug("definition loaded")
	return def, nil
}
