package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"comida-a-casa/internal/app"
	"comida-a-casa/internal/config"
	"comida-a-casa/internal/database"
	"comida-a-casa/internal/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog := logger.New(cfg.LogLevel, "console")
	defer zlog.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		if err := database.RunMigrations(cfg.DatabasePath); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Printf("Database %s is up to date.\n", cfg.DatabasePath)
	case "import-recipes":
		cmd := flag.NewFlagSet("import-recipes", flag.ExitOnError)
		user := cmd.String("user", "", "User id that owns the recipes")
		file := cmd.String("file", "", "CSV file with nombre,ingredientes[,categoría] columns")
		cmd.Parse(os.Args[2:])
		if *user == "" || *file == "" {
			cmd.Usage()
			os.Exit(2)
		}

		application := mustApp(ctx, cfg, zlog)
		defer application.Close()

		n, err := application.ImportRecipesFromFile(ctx, *user, *file)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Successfully imported %d recipes for %s.\n", n, *user)
	case "usage":
		cmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := cmd.Int("days", 7, "Report the last N days")
		cmd.Parse(os.Args[2:])

		application := mustApp(ctx, cfg, zlog)
		defer application.Close()

		usage, err := application.Metrics.GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to read usage: %v", err)
		}
		if len(usage) == 0 {
			fmt.Println("No generation calls recorded.")
			return
		}
		fmt.Printf("%-10s %10s %12s %7s %8s\n", "DAY", "PROMPT", "COMPLETION", "CALLS", "FAILED")
		for _, d := range usage {
			fmt.Printf("%-10s %10d %12d %7d %8d\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution, d.Failures)
		}
	case "metrics-cleanup":
		cmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cmd.Int("days", 30, "Keep records for the last N days")
		cmd.Parse(os.Args[2:])

		application := mustApp(ctx, cfg, zlog)
		defer application.Close()

		metricRows, sessionRows, err := application.Housekeeping(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records and %d expired session revocations.\n", metricRows, sessionRows)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func mustApp(ctx context.Context, cfg *config.Config, zlog *zap.Logger) *app.App {
	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	return application
}

func printUsage() {
	fmt.Println("Usage: menuctl <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  migrate           Apply the database migrations")
	fmt.Println("  import-recipes    Import a CSV of recipes into a user's collection (-user, -file)")
	fmt.Println("  usage             Show generation usage per day (-days)")
	fmt.Println("  metrics-cleanup   Remove old metric records and expired session revocations (-days)")
}
