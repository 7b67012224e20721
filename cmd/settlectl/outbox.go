package main

import (
	"context"
	"fmt"

	app "flowerstand/cmd"
	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/application/usecases/queries"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func outboxCmd(opts *options) *cobra.Command {
	outbox := &cobra.Command{Use: "outbox", Short: "Inspect and repair the event outbox"}
	outbox.AddCommand(outboxDeadCmd(opts))
	outbox.AddCommand(outboxRetryCmd(opts))
	return outbox
}

type deadEntryView struct {
	ID          string `json:"id" yaml:"id"`
	EventID     string `json:"eventId" yaml:"eventId"`
	EventType   string `json:"eventType" yaml:"eventType"`
	AggregateID string `json:"aggregateId" yaml:"aggregateId"`
	RetryCount  int    `json:"retryCount" yaml:"retryCount"`
	LastError   string `json:"lastError" yaml:"lastError"`
	UpdatedAt   string `json:"updatedAt" yaml:"updatedAt"`
}

func outboxDeadCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dead",
		Short: "List entries that exhausted their retries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := queries.NewListDeadOutboxEntriesQuery(limit)
			if err != nil {
				return err
			}
			return withRoot(cmd.Context(), opts, func(ctx context.Context, root *app.CompositionRoot) error {
				entries, err := root.CreateListDeadOutboxEntriesQueryHandler().Handle(ctx, query)
				if err != nil {
					return err
				}

				views := make([]deadEntryView, 0, len(entries))
				for _, e := range entries {
					views = append(views, deadEntryView{
						ID:          e.ID.String(),
						EventID:     e.EventID.String(),
						EventType:   e.EventType,
						AggregateID: e.AggregateID.String(),
						RetryCount:  e.RetryCount,
						LastError:   e.LastError,
						UpdatedAt:   e.UpdatedAt.UTC().Format("2006-01-02 15:04:05Z"),
					})
				}
				if opts.output != formatTable {
					return render(opts.out, opts.output, views)
				}

				tw := newTable(opts.out)
				tw.AppendHeader(table.Row{"ID", "Event", "Project", "Retries", "Last error", "Updated"})
				for _, v := range views {
					tw.AppendRow(table.Row{v.ID, v.EventType, v.AggregateID, v.RetryCount, v.LastError, v.UpdatedAt})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "dead entries", len(views)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", queries.DefaultDeadEntriesLimit, "maximum entries to list")
	return cmd
}

func outboxRetryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <entry-id>",
		Short: "Return a dead entry to the dispatch queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := kernel.UUIDFromString(args[0])
			if err != nil {
				return err
			}
			command, err := commands.NewRetryDeadOutboxEntryCommand(entryID)
			if err != nil {
				return err
			}
			return withRoot(cmd.Context(), opts, func(ctx context.Context, root *app.CompositionRoot) error {
				if err := root.CreateRetryDeadOutboxEntryCommandHandler().Handle(ctx, command); err != nil {
					return err
				}
				_, err := fmt.Fprintf(opts.out, "entry %s queued for dispatch\n", entryID)
				return err
			})
		},
	}
}

// withRoot connects to the service database. The outbox commands never
// deliver events, so Redis and the worker pool are left unset.
func withRoot(ctx context.Context, opts *options, fn func(context.Context, *app.CompositionRoot) error) error {
	configs, err := app.LoadConfig(opts.envFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: "warn", Format: "console", Output: "stderr"})
	defer func() {
		_ = logger.Sync()
	}()

	db, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: logging.NewGormLogger(logger, logging.GormLevel(configs.DBLogLevel), configs.DBSlowThreshold),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()

	root := app.NewCompositionRoot(configs, db, nil, nil, logger)
	return fn(ctx, &root)
}
