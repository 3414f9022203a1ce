package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/acksell/dynaspec/spec"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec>",
		Short: "Validate a spec and evaluate every access pattern",
		Long: `Validate a spec against the document schema, check its cross references
and evaluate every access pattern against the sample records, so malformed
conditions are reported before rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSpec(args[0])
			if err != nil {
				return err
			}
			engine := a.engine()
			var errs []error
			for i, p := range s.AccessPatterns {
				records, err := engine.FindMatchingRecords(s, p)
				if err != nil {
					errs = append(errs, fmt.Errorf("access pattern %d (%s): %w", i, p.Title, err))
					continue
				}
				a.log.Debug().Str("pattern", p.Title).Int("records", len(records)).Msg("evaluated access pattern")
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: ok (%d indexes, %d access patterns, %d records)\n",
				args[0], len(s.Indexes), len(s.AccessPatterns), len(s.Records))
			return nil
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <spec> <pattern>",
		Short: "Print the sample records an access pattern returns",
		Long: `Evaluate an access pattern against the spec's sample records and print
the matching records as JSON. The pattern is looked up by name, then by
title.`,
		Example: `  dynaspec query orders.yaml ordersByCustomer`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSpec(args[0])
			if err != nil {
				return err
			}
			p, err := findPattern(s, args[1])
			if err != nil {
				return err
			}
			records, err := a.engine().FindMatchingRecords(s, p)
			if err != nil {
				return err
			}
			return writeRecords(a.out, records)
		},
	}
}

func writeRecords(w io.Writer, records []spec.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
