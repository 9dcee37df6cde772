package main

import (
	"fmt"
	"os"
	"time"

	"backupbuddy/internal/app"
	"backupbuddy/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AddFolders", "Backup").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "bb",
	Short: "Track folder changes and build manual transfer packages",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Package Dir: %s\n", cfg.PackageDir)
		fmt.Printf("Registry:    %s (%s)\n", cfg.Registry.Type, cfg.Registry.Path)
		fmt.Printf("Snapshots:   %s (%s)\n", cfg.Snapshots.Type, cfg.Snapshots.Dir)
		fmt.Printf("History:     %s (%s)\n", cfg.History.Type, cfg.History.Path)
		fmt.Printf("Checksums:   %v\n", cfg.Scan.Checksum)
		return nil
	},
}

// track command
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Manage tracked folders",
}

var trackAddCmd = &cobra.Command{
	Use:   "add LOCATION PATH...",
	Short: "Track folders for a backup location",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddFolders")
		if err != nil {
			return err
		}
		defer a.Close()

		location := args[0]
		if err := a.AddFolders(location, args[1:]); err != nil {
			return fmt.Errorf("tracking folders: %w", err)
		}

		fmt.Printf("Tracking %d folder(s) for location %q\n", len(args)-1, location)
		return nil
	},
}

var trackRemoveCmd = &cobra.Command{
	Use:   "remove LOCATION PATH...",
	Short: "Stop tracking folders for a backup location",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveFolders")
		if err != nil {
			return err
		}
		defer a.Close()

		location := args[0]
		if err := a.RemoveFolders(location, args[1:]); err != nil {
			return fmt.Errorf("untracking folders: %w", err)
		}

		fmt.Printf("Stopped tracking %d folder(s) for location %q\n", len(args)-1, location)
		fmt.Println("Note: snapshots were kept; re-adding a folder later requires re-init.")
		return nil
	},
}

var trackListCmd = &cobra.Command{
	Use:   "list LOCATION",
	Short: "List tracked folders for a backup location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListFolders")
		if err != nil {
			return err
		}
		defer a.Close()

		folders, err := a.ListFolders(args[0])
		if err != nil {
			return err
		}

		if len(folders) == 0 {
			fmt.Printf("No folders tracked for location %q\n", args[0])
			return nil
		}
		for _, f := range folders {
			fmt.Printf("- %s\n", f)
		}
		return nil
	},
}

// init command
var initCmd = &cobra.Command{
	Use:   "init LOCATION [PATH...]",
	Short: "Seed snapshots without producing a changeset",
	Long: "Seed a snapshot for the given folders (or, with --all, every folder\n" +
		"tracked for the location). Re-initing a folder replaces its snapshot.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		location := args[0]

		if !all && len(args) < 2 {
			return fmt.Errorf("specify folder paths or use --all")
		}

		a, err := newApp("InitFolders")
		if err != nil {
			return err
		}
		defer a.Close()

		var n int
		if all {
			n, err = a.InitAll(location)
		} else {
			n, err = a.InitFolders(location, args[1:])
		}
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}

		fmt.Printf("Initialized %d snapshot(s) for location %q\n", n, location)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup LOCATION",
	Short: "Generate a transfer package for a backup location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Backup(args[0])
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		printSummary(summary)

		if summary.Failed() {
			return fmt.Errorf("one or more folders failed; their snapshots were not advanced")
		}
		return nil
	},
}

// apply-deletions command
var applyDeletionsCmd = &cobra.Command{
	Use:   "apply-deletions MANIFEST DEST_ROOT",
	Short: "Delete manifest-listed paths under a destination root",
	Long: "Run the deletion pass of the manual two-phase apply: after copying\n" +
		"the additions subtree onto the destination, delete every path the\n" +
		"manifest lists. Missing paths are reported, not errors.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ApplyDeletions")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.ApplyDeletions(args[0], args[1])
		if err != nil {
			return fmt.Errorf("deletion pass failed: %w", err)
		}

		for _, p := range result.Deleted {
			fmt.Printf("deleted   %s\n", p)
		}
		for _, p := range result.Missing {
			fmt.Printf("not found %s\n", p)
		}
		fmt.Printf("%d deleted, %d not found\n", len(result.Deleted), len(result.Missing))
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-14s  %-10s  %s  %-8s  %s\n",
				r.ID,
				r.Operation,
				r.Location,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// track subcommands
	trackCmd.AddCommand(trackAddCmd)
	trackCmd.AddCommand(trackRemoveCmd)
	trackCmd.AddCommand(trackListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("all", false, "Init every folder tracked for the location")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(applyDeletionsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
