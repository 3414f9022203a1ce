package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/acksell/dynaspec/codegen"
)

func newGenCmd(a *app) *cobra.Command {
	var dir, pkg string
	cmd := &cobra.Command{
		Use:   "gen <spec>",
		Short: "Generate a typed Go client for the access patterns",
		Long: `Generate a typed Go client with one function per access pattern.

Query patterns become functions that page through results with the
DynamoDB expression builder; get patterns on the main index use GetItem.
The output is a single <package>_gen.go file. Stale generated files in the
directory are removed; hand-written files are left alone.`,
		Example: `  dynaspec gen orders.yaml --dir ./orderdb
  dynaspec gen orders.yaml --dir ./internal/store --package store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dir") && a.cfg.ClientDir != "" {
				dir = a.cfg.ClientDir
			}
			if !cmd.Flags().Changed("package") {
				pkg = a.cfg.Package
			}

			s, err := a.loadSpec(args[0])
			if err != nil {
				return err
			}
			g := codegen.New(codegen.Config{Package: pkg})
			src, err := g.Generate(s)
			if err != nil {
				return err
			}
			name := g.FileName(s)
			if err := codegen.Write(dir, name, src); err != nil {
				return err
			}
			a.log.Info().
				Str("file", filepath.Join(dir, name)).
				Int("patterns", len(s.AccessPatterns)).
				Msg("generated client")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	cmd.Flags().StringVar(&pkg, "package", "", "package name (default: packageName from the spec, else ddbclient)")
	return cmd
}
