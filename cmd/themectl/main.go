// cmd/themectl/main.go
//
// themectl is a small operator CLI for the theme service: list themes,
// switch the active theme and mode, manage custom themes, and run the admin
// seed/cleanup/status operations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tentlabs/tentshop/internal/models"
	"github.com/tentlabs/tentshop/internal/themestore"
)

func main() {
	godotenv.Load()

	var (
		serverURL = flag.String("server", envOr("TENTSHOP_URL", "http://localhost:8080"), "Theme service base URL")
		timeout   = flag.Duration("timeout", 30*time.Second, "Request timeout")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := themestore.NewClient(*serverURL)
	if err := run(ctx, client, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "themectl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *themestore.Client, command string, args []string) error {
	switch command {
	case "themes":
		return listThemes(ctx, client, args)
	case "categories":
		categories, err := client.FetchCategories(ctx)
		if err != nil {
			return err
		}
		for _, category := range categories {
			fmt.Printf("%-12s %-12s %d\n", category.ID, category.Name, category.Count)
		}
		return nil
	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: themectl show <theme-id>")
		}
		theme, err := client.FetchTheme(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(theme)
	case "activate":
		if len(args) != 1 {
			return fmt.Errorf("usage: themectl activate <theme-id>")
		}
		if err := client.SaveActiveTheme(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Active theme set to %s\n", args[0])
		return nil
	case "mode":
		if len(args) != 1 || !models.IsValidMode(args[0]) {
			return fmt.Errorf("usage: themectl mode <light|dark>")
		}
		if err := client.SaveMode(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Theme mode set to %s\n", args[0])
		return nil
	case "create":
		return createTheme(ctx, client, args)
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: themectl delete <theme-id>")
		}
		if err := client.DeleteCustomTheme(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted theme %s\n", args[0])
		return nil
	case "seed":
		result, err := client.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: inserted %d of %d predefined themes\n",
			result.Message, result.InsertedThemes, result.TotalPredefinedThemes)
		return nil
	case "cleanup":
		report, err := client.Cleanup(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d duplicate(s) across %d theme id(s)\n",
			report.TotalDuplicatesRemoved, report.ProcessedThemes)
		for _, group := range report.Details {
			fmt.Printf("  %s: kept %q, removed %d\n",
				group.ThemeID, group.KeptTheme.Name, group.DuplicatesRemoved)
		}
		return nil
	case "status":
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(status)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func listThemes(ctx context.Context, client *themestore.Client, args []string) error {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	customOnly := fs.Bool("custom", false, "List only custom themes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		themes []models.Theme
		err    error
	)
	if *customOnly {
		themes, err = client.FetchCustomThemes(ctx)
	} else {
		themes, err = client.FetchThemes(ctx)
	}
	if err != nil {
		return err
	}

	for _, theme := range themes {
		kind := "predefined"
		if theme.IsCustom {
			kind = "custom"
		}
		fmt.Printf("%-40s %-12s %-12s %s\n", theme.ID, theme.Category, kind, theme.Name)
	}
	fmt.Printf("%d theme(s)\n", len(themes))
	return nil
}

func createTheme(ctx context.Context, client *themestore.Client, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	file := fs.String("file", "", "Path to a theme JSON document (defaults to stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	var theme models.Theme
	if err := json.NewDecoder(input).Decode(&theme); err != nil {
		return fmt.Errorf("decode theme: %w", err)
	}
	if theme.ID == "" {
		theme.ID = models.GenerateUniqueThemeID(theme.Name)
	}

	created, err := client.CreateCustomTheme(ctx, theme)
	if err != nil {
		return err
	}
	fmt.Printf("Created custom theme %s\n", created.ID)
	return nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: themectl [flags] <command> [args]

Commands:
  themes [-custom]        List themes
  categories              List theme categories with counts
  show <theme-id>         Print one theme as JSON
  activate <theme-id>     Set the active theme
  mode <light|dark>       Set the theme mode
  create [-file PATH]     Create a custom theme from JSON
  delete <theme-id>       Delete a custom theme
  seed                    Seed predefined themes
  cleanup                 Remove duplicate theme documents
  status                  Print service status

Flags:
`)
	flag.PrintDefaults()
}
