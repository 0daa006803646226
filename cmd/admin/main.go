package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"civicvoice/backend/internal/app"
	"civicvoice/backend/internal/cluster"
	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/contact"
	"civicvoice/backend/internal/escalation"
	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/prompts"
	"civicvoice/backend/internal/search"
	"civicvoice/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Operator commands for the civicvoice backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		app.NewLogger(cfg.Log)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		return storage.Migrate(cmd.Context(), db)
	},
}

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Run one escalation sweep now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		sweeper := escalation.NewSweeper(s, s, nil, nil)
		scheduler, err := escalation.NewScheduler(cfg.Escalation, sweeper, s)
		if err != nil {
			return err
		}
		run, err := scheduler.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(run)
	},
}

var statusNotes string

var setStatusCmd = &cobra.Command{
	Use:   "set-status <complaint_id> <status>",
	Short: "Move a complaint to pending, in_progress or resolved",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		svc := complaint.NewService(s, s, nil)
		updated, err := svc.UpdateStatus(cmd.Context(), args[0], args[1], statusNotes)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("complaint %s not found", args[0])
		}
		return printJSON(updated)
	},
}

var clusterCountCmd = &cobra.Command{
	Use:   "cluster-count <category> [village] [district] [state]",
	Short: "Show the cluster key and size for a category and location",
	Args:  cobra.RangeArgs(1, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		parts := append(args[1:], "", "", "")
		loc := models.Location{Village: parts[0], District: parts[1], State: parts[2]}

		svc := complaint.NewService(s, nil, nil)
		return printJSON(map[string]any{
			"clusterId": cluster.DeriveKey(args[0], loc),
			"count":     svc.CountCluster(cmd.Context(), args[0], loc),
		})
	},
}

var findContactCmd = &cobra.Command{
	Use:   "find-contact <department> <location>",
	Short: "Look up a department's public contact details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogue := prompts.Default()
		if cfg.LLM.PromptsPath != "" {
			var err error
			if catalogue, err = prompts.Load(cfg.LLM.PromptsPath); err != nil {
				return err
			}
		}
		client, _, err := llm.NewClient(cmd.Context(), cfg.LLM)
		if err != nil {
			return err
		}

		agent := contact.NewAgent(search.NewClient(cfg.Search), client, catalogue, metrics.New(cfg.Metrics))
		found, err := agent.FindDepartmentContact(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(found)
	},
}

func init() {
	setStatusCmd.Flags().StringVar(&statusNotes, "notes", "", "free-text note for the change")

	rootCmd.AddCommand(migrateCmd, escalateCmd, setStatusCmd, clusterCountCmd, findContactCmd)
}

func openDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func openStorage(ctx context.Context) (*storage.Service, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return storage.NewStorageService(db, rdb), func() { rdb.Close() }, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}
