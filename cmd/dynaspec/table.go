package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/acksell/dynaspec/live"
	"github.com/acksell/dynaspec/logging"
	"github.com/acksell/dynaspec/table"
)

type awsFlags struct {
	region, endpoint, profile string
}

func (f *awsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "AWS region (default: aws.region from config, then the AWS default chain)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "DynamoDB endpoint, e.g. http://localhost:8000 for DynamoDB Local")
	cmd.Flags().StringVar(&f.profile, "profile", "", "shared config profile")
}

func (f *awsFlags) options(cfg AWSConfig) live.Options {
	opts := live.Options{Region: cfg.Region, Endpoint: cfg.Endpoint, Profile: cfg.Profile}
	if f.region != "" {
		opts.Region = f.region
	}
	if f.endpoint != "" {
		opts.Endpoint = f.endpoint
	}
	if f.profile != "" {
		opts.Profile = f.profile
	}
	return opts
}

// runner connects to DynamoDB. The caller identity is logged for the real
// service so it is obvious which account a command touches.
func (a *app) runner(ctx context.Context, f *awsFlags) (*live.Runner, error) {
	opts := f.options(a.cfg.AWS)
	cfg, err := live.LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	log := logging.Component(a.log, "live")
	if opts.Endpoint == "" {
		id, err := live.CallerIdentity(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("account", id.Account).Str("arn", id.ARN).Str("region", cfg.Region).Msg("using aws identity")
	} else {
		log.Info().Str("endpoint", opts.Endpoint).Msg("using custom endpoint")
	}
	return live.NewRunner(live.NewAWSClient(cfg, opts), log), nil
}

func newExecCmd(a *app) *cobra.Command {
	var f awsFlags
	cmd := &cobra.Command{
		Use:   "exec <spec> <pattern>",
		Short: "Run an access pattern against a real table",
		Long: `Run an access pattern against the table named in the spec and print the
returned items as JSON. Compare the output with 'dynaspec query' to check
that the documented sample records match what DynamoDB returns.`,
		Example: `  dynaspec exec orders.yaml ordersByCustomer --endpoint http://localhost:8000`,
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
			r, err := a.runner(cmd.Context(), &f)
			if err != nil {
				return err
			}
			records, err := r.Run(cmd.Context(), s, p)
			if err != nil {
				return err
			}
			return writeRecords(a.out, records)
		},
	}
	f.register(cmd)
	return cmd
}

type createTableOptions struct {
	dryRun  bool
	wait    bool
	seed    bool
	timeout time.Duration
}

func newCreateTableCmd(a *app) *cobra.Command {
	var (
		f    awsFlags
		opts createTableOptions
	)
	cmd := &cobra.Command{
		Use:   "create-table <spec>",
		Short: "Create the table described by a spec",
		Long: `Create the table with its secondary indexes, billed per request.

With --dry-run the request is printed in the format accepted by
'aws dynamodb create-table --cli-input-json' and nothing is sent.
With --seed the sample records are written once the table is active.`,
		Example: `  dynaspec create-table orders.yaml --dry-run > table.json
  dynaspec create-table orders.yaml --endpoint http://localhost:8000 --seed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSpec(args[0])
			if err != nil {
				return err
			}
			def, err := table.FromSpec(s)
			if err != nil {
				return err
			}
			if opts.dryRun {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(def.CLIInput())
			}

			ctx := cmd.Context()
			r, err := a.runner(ctx, &f)
			if err != nil {
				return err
			}
			if err := r.CreateTable(ctx, def); err != nil {
				return err
			}
			if opts.wait || opts.seed {
				if err := r.WaitForTableActive(ctx, def.Name, opts.timeout); err != nil {
					return err
				}
			}
			if opts.seed {
				if _, err := r.Seed(ctx, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the CreateTable request instead of sending it")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "wait until the table is active")
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "write the sample records after creating the table")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "how long --wait and --seed wait for the table")
	return cmd
}
