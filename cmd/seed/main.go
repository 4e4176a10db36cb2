package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasky/internal/cache"
	"tasky/internal/config"
	"tasky/internal/db"
	apperrors "tasky/internal/errors"
	"tasky/internal/logger"
	"tasky/internal/model"
	"tasky/internal/repository"
	"tasky/internal/service"
)

// SeedTask is one entry of a seed file.
type SeedTask struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	EventDate string `json:"event_date"`
}

type seedOptions struct {
	email   string
	name    string
	picture string
	count   int
	file    string
	list    bool
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a user and demo tasks into the tasky database",
		Long: `Create or update a user by email, then add demo tasks for them.

Tasks come from --file (a JSON array of {name, status, event_date}) or are
generated across the current month.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "demo@tasky.local", "Email of the user to seed")
	cmd.Flags().StringVar(&opts.name, "name", "Demo User", "Display name of the user")
	cmd.Flags().StringVar(&opts.picture, "picture", "", "Profile picture URL")
	cmd.Flags().IntVar(&opts.count, "tasks", 10, "Number of generated demo tasks")
	cmd.Flags().StringVar(&opts.file, "file", "", "JSON file with the tasks to create")
	cmd.Flags().BoolVar(&opts.list, "list", false, "Print every user after seeding")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func run(ctx context.Context, opts seedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewConsole(opts.verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	items, err := loadSeedTasks(opts.file, opts.count, time.Now())
	if err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	users := service.NewUserService(userRepo, cacheClient)
	tasks := service.NewTaskService(repository.NewTaskRepository(gormDB), userRepo, cacheClient, log)

	profile := service.Profile{Email: opts.email, Name: opts.name, Picture: opts.picture}
	res, err := seed(ctx, users, tasks, profile, items)
	if err != nil {
		return err
	}

	fmt.Printf("Seed completed successfully!\n")
	fmt.Printf("  - User: %s (id %d, %s)\n", res.User.Email, res.User.ID, res.Outcome)
	fmt.Printf("  - Tasks created: %d\n", res.Created)
	if res.Skipped > 0 {
		fmt.Printf("  - Tasks skipped: %d\n", res.Skipped)
	}

	if opts.list {
		all, err := users.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range all {
			fmt.Printf("%6d  %-32s %s\n", u.ID, u.Email, u.Name)
		}
	}
	return nil
}

type seedResult struct {
	User    *model.User
	Outcome service.ReconcileOutcome
	Created int
	Skipped int
}

// seed upserts the user and creates items for them. Items with an invalid
// status or date are skipped, not fatal.
func seed(ctx context.Context, users service.UserService, tasks service.TaskService, p service.Profile, items []SeedTask) (*seedResult, error) {
	user, outcome, err := users.Upsert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", p.Email, err)
	}
	res := &seedResult{User: user, Outcome: outcome}

	for _, item := range items {
		date, err := service.ParseEventDate(item.EventDate)
		if err != nil {
			res.Skipped++
			continue
		}
		_, err = tasks.CreateTask(ctx, user.Email, service.CreateTaskInput{
			Name:      item.Name,
			Status:    model.TaskStatus(item.Status),
			EventDate: date,
		})
		if err != nil {
			if apperrors.MapErrorToHTTP(err).StatusCode < http.StatusInternalServerError {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("create task %q: %w", item.Name, err)
		}
		res.Created++
	}
	return res, nil
}

// loadSeedTasks reads path, or generates count tasks spread over now's month.
func loadSeedTasks(path string, count int, now time.Time) ([]SeedTask, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		var items []SeedTask
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse seed file %s: %w", path, err)
		}
		return items, nil
	}
	return demoTasks(count, now), nil
}

// demoTasks cycles through the statuses and spreads dates over now's month.
// Every fifth task has no date.
func demoTasks(count int, now time.Time) []SeedTask {
	first := time.Date(now.Year(), now.Month(), 1, 9, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	items := make([]SeedTask, 0, count)
	for i := 0; i < count; i++ {
		item := SeedTask{
			Name:   fmt.Sprintf("Demo task %d", i+1),
			Status: string(model.TaskStatuses[i%len(model.TaskStatuses)]),
		}
		if i%5 != 4 {
			item.EventDate = first.AddDate(0, 0, (i*3)%days).Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}
