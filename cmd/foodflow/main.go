package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"foodflow/internal/app"
	"foodflow/internal/config"
	"foodflow/internal/database"
	"foodflow/internal/logger"
	"foodflow/internal/mealdb"
	"foodflow/internal/metrics"
	"foodflow/internal/planner"
	"foodflow/internal/recipe"
	"foodflow/internal/storage"
	"foodflow/internal/userstate"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// stdout carries command output, so logs go to stderr.
	log := logger.NewWithOutput(cfg.LogLevel, os.Stderr)

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.WithError(err).Fatal("command failed")
	}
}

// env is everything a subcommand may need.
type env struct {
	db      *database.DB
	kv      storage.KV
	metrics *metrics.Store
	app     *app.App
}

func (e *env) Close() {
	e.kv.Close()
	e.db.Close()
}

func setup(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*env, error) {
	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	kv, err := storage.Open(ctx, cfg, db.SQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	catalog := recipe.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		log.WithError(err).Warn("recipe catalog has coverage gaps")
	}

	metricsStore := metrics.NewStore(db.SQL)
	source := mealdb.NewClient(cfg.MealDBBaseURL, cfg.FetchTimeout, log)

	a := app.NewApp(app.Deps{
		Store:     userstate.New(ctx, kv, log),
		Generator: planner.NewGenerator(catalog),
		Source:    source,
		Fetcher:   planner.NewFetchGenerator(source, cfg.FetchConcurrency, log),
		Recorder:  metricsStore,
		Log:       log,
	})

	return &env{db: db, kv: kv, metrics: metricsStore, app: a}, nil
}

func run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	e, err := setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer e.Close()

	switch cmd {
	case "prefs":
		fs := flag.NewFlagSet("prefs", flag.ContinueOnError)
		diet := fs.String("diet", "", "Dietary preference (none, vegetarian, vegan, keto, gluten-free)")
		skill := fs.String("skill", "", "Cooking skill level (easy, intermediate, advanced)")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		if *diet != "" {
			d, err := recipe.ParseDiet(*diet)
			if err != nil {
				return err
			}
			if _, err := e.app.SetDiet(ctx, d); err != nil {
				return err
			}
		}
		if *skill != "" {
			s, err := recipe.ParseSkill(*skill)
			if err != nil {
				return err
			}
			if _, err := e.app.SetSkill(ctx, s); err != nil {
				return err
			}
		}
		printPreferences(out, e.app.Preferences(), e.app.HasCompletedOnboarding())

	case "onboard":
		fs := flag.NewFlagSet("onboard", flag.ContinueOnError)
		diet := fs.String("diet", "none", "Dietary preference")
		skill := fs.String("skill", "easy", "Cooking skill level")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		d, err := recipe.ParseDiet(*diet)
		if err != nil {
			return err
		}
		s, err := recipe.ParseSkill(*skill)
		if err != nil {
			return err
		}
		res, err := e.app.CompleteOnboarding(ctx, d, s)
		if err != nil {
			return err
		}
		printPreferences(out, e.app.Preferences(), true)
		printResult(out, res)

	case "plan", "regenerate":
		res, err := e.app.RegeneratePlan(ctx)
		if err != nil {
			return err
		}
		printResult(out, res)

	case "fetch-plan":
		res, err := e.app.FetchPlan(ctx)
		if err != nil {
			return err
		}
		printResult(out, res)

	case "show":
		plan, ok := e.app.CurrentPlan()
		if !ok {
			fmt.Fprintln(out, "No meal plan yet. Run `foodflow plan` first.")
			return nil
		}
		printPlan(out, plan)

	case "groceries":
		printGroceries(out, e.app.GroceryList())

	case "reset":
		if err := e.app.ClearData(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "All data cleared.")

	case "metrics":
		fs := flag.NewFlagSet("metrics", flag.ContinueOnError)
		days := fs.Int("days", 7, "Summarize the last N days")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		summary, err := e.metrics.GetDailySummary(ctx, *days)
		if err != nil {
			return err
		}
		printSummary(out, summary)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ContinueOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		affected, err := e.metrics.Cleanup(ctx, *days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Fprintf(out, "Successfully removed %d old metric records.\n", affected)

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: foodflow <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  prefs [-diet d] [-skill s]   Show or change preferences")
	fmt.Fprintln(w, "  onboard -diet d -skill s     Finish first-run setup and plan the week")
	fmt.Fprintln(w, "  plan | regenerate            Draw a new plan from the recipe catalog")
	fmt.Fprintln(w, "  fetch-plan                   Build a plan from TheMealDB")
	fmt.Fprintln(w, "  show                         Print the current plan")
	fmt.Fprintln(w, "  groceries                    Print the grocery list")
	fmt.Fprintln(w, "  reset                        Clear preferences and plan")
	fmt.Fprintln(w, "  metrics [-days N]            Summarize recent plan generation")
	fmt.Fprintln(w, "  metrics-cleanup [-days N]    Remove old metric records")
}
