// dynaspec documents a DynamoDB single-table design from one spec file.
//
// # Installation
//
//	go install github.com/acksell/dynaspec/cmd/dynaspec@latest
//
// # Commands
//
//	dynaspec render        Render the markdown design document
//	dynaspec gen           Generate a typed Go client for the access patterns
//	dynaspec validate      Validate a spec and evaluate every access pattern
//	dynaspec query         Print the sample records an access pattern returns
//	dynaspec exec          Run an access pattern against a real table
//	dynaspec create-table  Create the table described by a spec
//
// # Quick Start
//
//	dynaspec render orders.yaml -o ORDERS.md
//	dynaspec render orders.yaml -o ORDERS.md --watch
//	dynaspec gen orders.yaml --dir ./orderdb
//
// Defaults are read from dynaspec.yaml, searched from the working
// directory upward.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/acksell/dynaspec/logging"
	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
	"github.com/acksell/dynaspec/validate"
)

var version = "0.1.0"

// app carries what every command needs once flags and config are resolved.
type app struct {
	cfg     Config
	cfgPath string
	log     zerolog.Logger
	out     io.Writer
	errOut  io.Writer

	configFlag       string
	logLevel         string
	pretty           bool
	inclusiveBetween bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dynaspec:", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "dynaspec",
		Short:         "Document and generate clients for DynamoDB single-table designs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFlag, "config", "", "config file (default: dynaspec.yaml in the working directory or a parent)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.pretty, "pretty", false, "human readable log output")
	flags.BoolVar(&a.inclusiveBetween, "inclusive-between", false, "treat between bounds as inclusive")

	root.AddCommand(
		newRenderCmd(a),
		newGenCmd(a),
		newValidateCmd(a),
		newQueryCmd(a),
		newExecCmd(a),
		newCreateTableCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, path, err := LoadConfig(a.configFlag, "")
	if err != nil {
		return err
	}
	a.cfg, a.cfgPath = cfg, path

	level := a.cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}
	if cmd.Flags().Changed("inclusive-between") {
		a.cfg.InclusiveBetween = a.inclusiveBetween
	}
	a.log, err = logging.New(logging.Config{Level: level, Pretty: a.pretty, Output: a.errOut})
	if err != nil {
		return err
	}
	if path != "" {
		a.log.Debug().Str("config", path).Msg("loaded config")
	}
	return nil
}

func (a *app) engine() *query.Engine {
	return query.New(query.Options{InclusiveBetween: a.cfg.InclusiveBetween})
}

func (a *app) loadSpec(path string) (*spec.Spec, error) {
	v, err := validate.New()
	if err != nil {
		return nil, err
	}
	return spec.Load(path, v)
}

func (a *app) parseSpec(path string, data []byte) (*spec.Spec, error) {
	v, err := validate.New()
	if err != nil {
		return nil, err
	}
	s, err := spec.Parse(data, spec.FormatFromPath(path), v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// findPattern looks an access pattern up by name, falling back to title.
func findPattern(s *spec.Spec, ref string) (spec.AccessPattern, error) {
	for _, p := range s.AccessPatterns {
		if p.Name == ref {
			return p, nil
		}
	}
	for _, p := range s.AccessPatterns {
		if p.Title == ref {
			return p, nil
		}
	}
	return spec.AccessPattern{}, fmt.Errorf("no access pattern named %q", ref)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dynaspec version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "dynaspec version %s\n", version)
		},
	}
}
