package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/acksell/dynaspec/query"
	"github.com/acksell/dynaspec/spec"
	"github.com/acksell/dynaspec/table"
)

const defaultPollInterval = time.Second

type Runner struct {
	client       Client
	log          zerolog.Logger
	pollInterval time.Duration
}

func NewRunner(client Client, log zerolog.Logger) *Runner {
	return &Runner{
		client:       client,
		log:          log,
		pollInterval: defaultPollInterval,
	}
}

// Run executes an access pattern and returns the items as records. Queries
// page through results until the pattern's limit is reached or the index is
// exhausted. A get yields zero or one records.
func (r *Runner) Run(ctx context.Context, s *spec.Spec, p spec.AccessPattern) ([]spec.Record, error) {
	switch {
	case p.Type == spec.PatternGet && p.Index == spec.MainIndex:
		return r.getItem(ctx, s, p)
	case p.Type == spec.PatternGet, p.Type == spec.PatternQuery:
		return r.query(ctx, s, p)
	default:
		return nil, fmt.Errorf("%w %q", query.ErrUnknownPatternType, p.Type)
	}
}

func (r *Runner) getItem(ctx context.Context, s *spec.Spec, p spec.AccessPattern) ([]spec.Record, error) {
	in, err := BuildGetItemInput(s, p)
	if err != nil {
		return nil, err
	}
	out, err := r.client.GetItem(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	r.log.Debug().Str("pattern", p.Title).Bool("found", out.Item != nil).Msg("get item")
	if out.Item == nil {
		return []spec.Record{}, nil
	}
	rec, err := table.RecordFromItem(out.Item)
	if err != nil {
		return nil, err
	}
	return []spec.Record{rec}, nil
}

func (r *Runner) query(ctx context.Context, s *spec.Spec, p spec.AccessPattern) ([]spec.Record, error) {
	in, err := BuildQueryInput(s, p)
	if err != nil {
		return nil, err
	}
	limit := p.Limit
	if p.Type == spec.PatternGet {
		limit = 1
	}

	records := make([]spec.Record, 0)
	for page := 1; ; page++ {
		out, err := r.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		r.log.Debug().
			Str("pattern", p.Title).
			Int("page", page).
			Int("items", len(out.Items)).
			Bool("more", out.LastEvaluatedKey != nil).
			Msg("query page")
		for _, item := range out.Items {
			rec, err := table.RecordFromItem(item)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if limit > 0 && len(records) >= limit {
			return records[:limit], nil
		}
		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// CreateTable sends the CreateTable request for def. An existing table is
// reported as an error wrapping *types.ResourceInUseException.
func (r *Runner) CreateTable(ctx context.Context, def table.TableDefinition) error {
	_, err := r.client.CreateTable(ctx, def.CreateTableInput())
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", def.Name, err)
	}
	r.log.Info().Str("table", def.Name).Int("gsis", len(def.GSIs)).Int("lsis", len(def.LSIs)).Msg("table created")
	return nil
}

// WaitForTableActive polls DescribeTable until the table is active or the
// timeout passes.
func (r *Runner) WaitForTableActive(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", tableName, err)
		}
		if out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return nil
		}
		r.log.Debug().Str("table", tableName).Msg("waiting for table to become active")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}

	return fmt.Errorf("table %s did not become active within %v", tableName, timeout)
}

// Seed writes every sample record of s to the table. Records missing a
// primary key attribute are rejected before anything is written.
func (r *Runner) Seed(ctx context.Context, s *spec.Spec) (int, error) {
	def, err := table.FromSpec(s)
	if err != nil {
		return 0, err
	}
	var errs []error
	for i, rec := range s.Records {
		if _, err := def.KeyDefinitions.KeyFromRecord(rec); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return 0, err
	}

	for i, rec := range s.Records {
		item, err := table.ItemFromRecord(rec)
		if err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(def.Name),
			Item:      item,
		}); err != nil {
			return i, fmt.Errorf("failed to put record %d: %w", i, err)
		}
	}
	r.log.Info().Str("table", def.Name).Int("records", len(s.Records)).Msg("sample records written")
	return len(s.Records), nil
}
