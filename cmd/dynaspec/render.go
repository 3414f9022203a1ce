package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acksell/dynaspec/docs"
	"github.com/acksell/dynaspec/logging"
	"github.com/acksell/dynaspec/watch"
)

type renderOptions struct {
	output string
	watch  bool
	force  bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <spec>",
		Short: "Render the markdown design document",
		Long: `Render the markdown design document for a spec.

The document lists the table definition, every access pattern with its
request and the sample records it returns, and the records in each index.
Without --output the document is written to stdout.

With an output file the spec's checksum is remembered, and an unchanged spec
is not rendered again unless --force is given. Set cacheDir in dynaspec.yaml
to keep checksums between runs.`,
		Example: `  dynaspec render orders.yaml
  dynaspec render orders.yaml -o ORDERS.md
  dynaspec render orders.yaml -o ORDERS.md --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				opts.output = a.cfg.Output
			}
			return a.runRender(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "markdown file to write (default: stdout)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "render again whenever the spec changes")
	cmd.Flags().BoolVar(&opts.force, "force", false, "render even if the spec is unchanged")
	return cmd
}

func (a *app) runRender(ctx context.Context, specPath string, opts renderOptions) error {
	if opts.watch && opts.output == "" {
		return errors.New("--watch needs --output")
	}

	sums, err := watch.OpenChecksums(watch.ChecksumOptions{Dir: a.cfg.CacheDir})
	if err != nil {
		return err
	}
	defer sums.Close()

	render := func(_ context.Context, data []byte) error {
		return a.renderOnce(sums, specPath, data, opts)
	}

	if !opts.watch {
		data, err := os.ReadFile(specPath)
		if err != nil {
			return fmt.Errorf("failed to read spec: %w", err)
		}
		return render(ctx, data)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	w := watch.NewWatcher(specPath, a.cfg.WatchDebounce, logging.Component(a.log, "watch"))
	a.log.Info().Str("spec", specPath).Str("output", opts.output).Msg("watching for changes")
	return w.Run(ctx, render)
}

func (a *app) renderOnce(sums *watch.Checksums, specPath string, data []byte, opts renderOptions) error {
	var key string
	if opts.output != "" {
		abs, err := filepath.Abs(specPath)
		if err != nil {
			return err
		}
		out, err := filepath.Abs(opts.output)
		if err != nil {
			return err
		}
		key = fmt.Sprintf("render:%s:%s:%s:%t", version, abs, out, a.cfg.InclusiveBetween)
		changed, err := sums.Changed(key, data)
		if err != nil {
			return err
		}
		if !changed && !opts.force && fileExists(opts.output) {
			a.log.Info().Str("output", opts.output).Msg("spec unchanged, skipping render")
			return nil
		}
	}

	doc, err := a.render(specPath, data)
	if err == nil && opts.output != "" {
		err = os.WriteFile(opts.output, doc, 0o644)
	}
	if err != nil {
		if key != "" {
			if ferr := sums.Forget(key); ferr != nil {
				a.log.Warn().Err(ferr).Msg("failed to reset checksum")
			}
		}
		return err
	}

	if opts.output == "" {
		_, err := a.out.Write(doc)
		return err
	}
	a.log.Info().Str("output", opts.output).Int("bytes", len(doc)).Msg("rendered")
	return nil
}

func (a *app) render(specPath string, data []byte) ([]byte, error) {
	s, err := a.parseSpec(specPath, data)
	if err != nil {
		return nil, err
	}
	r := docs.NewRenderer(a.engine(), docs.Options{
		GeneratorVersion: "v" + version,
		Package:          a.cfg.Package,
		Logger:           logging.Component(a.log, "docs"),
	})
	return r.Render(s)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
