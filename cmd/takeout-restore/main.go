package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/handiism/takeout-restore/internal/config"
	"github.com/handiism/takeout-restore/internal/restore"
	"github.com/olekukonko/tablewriter"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		policyFlag   = flag.String("policy", "", "Duplicate position policy: renumber, overwrite or reject (overrides config)")
		workersFlag  = flag.Int("workers", 0, "Playlists to copy in parallel (overrides config)")
		playlistFlag = flag.Bool("playlist", false, "Create a playlist file in each folder")
		formatFlag   = flag.String("format", "", "Playlist file format: m3u, pls, wpl or zpl")
		coverFlag    = flag.Bool("cover-art", false, "Save embedded artwork as folder cover")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Reconcile playlists without copying")
	)

	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Println("Takeout Restore - Rebuild playlist folders from a music export")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  takeout-restore [options] <input-root> <output-root>")
		fmt.Println()
		fmt.Println("For interactive mode, use: takeout-restore-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputRoot, outputRoot := flag.Arg(0), flag.Arg(1)

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *policyFlag != "" {
		settings.DuplicatePositionPolicy = *policyFlag
	}
	if *workersFlag > 0 {
		settings.MaxConcurrentPlaylists = *workersFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *formatFlag != "" {
		settings.PlaylistFormat = *formatFlag
	}
	if *coverFlag {
		settings.SaveCoverArtInFolder = true
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	var (
		errorPrefix   = color.New(color.FgRed, color.Bold).Sprint("error ")
		warningPrefix = color.New(color.FgYellow).Sprint("warn  ")
		successPrefix = color.New(color.FgGreen).Sprint("done  ")
		infoPrefix    = color.New(color.FgCyan).Sprint("info  ")
	)

	manager := restore.NewManager(settings, func(event restore.ProgressEvent) {
		if event.Level == restore.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case restore.LevelError:
			prefix = errorPrefix
		case restore.LevelWarning:
			prefix = warningPrefix
		case restore.LevelSuccess:
			prefix = successPrefix
		case restore.LevelInfo:
			prefix = infoPrefix
		default:
			prefix = "      "
		}

		if event.Level == restore.LevelError || event.Level == restore.LevelWarning {
			fmt.Fprintln(os.Stderr, prefix+event.Message)
			return
		}
		fmt.Println(prefix + event.Message)
	})

	color.New(color.Bold).Println("Takeout Restore")
	fmt.Println("----------------------------------------")
	fmt.Println()

	if err := manager.Initialize(ctx, inputRoot); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nRestore cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not copying]")
		printSummary(manager.Summaries(), false)
		return
	}

	fmt.Printf("\nCopying into %s...\n\n", outputRoot)

	if err := manager.Materialize(ctx, outputRoot); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nRestore cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during restore: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	printSummary(manager.Summaries(), true)

	copied, skipped, failed := manager.GetFileCounts()
	fmt.Printf("Complete! Copied %d files, %d already present, %d failed\n", copied, skipped, failed)
}

// printSummary renders one row per playlist.
func printSummary(summaries []restore.Summary, copied bool) {
	table := tablewriter.NewWriter(os.Stdout)
	header := []string{"Playlist", "Tracks", "Unmatched"}
	if copied {
		header = append(header, "Copied", "Skipped", "Failed")
	}
	table.SetHeader(header)
	table.SetRowLine(false)

	for _, s := range summaries {
		name := s.Name
		if s.Leftover {
			name += " *"
		}
		row := []string{name, strconv.Itoa(s.Tracks), strconv.Itoa(s.Unmatched)}
		if copied {
			row = append(row, strconv.Itoa(s.Stats.Copied), strconv.Itoa(s.Stats.Skipped), strconv.Itoa(s.Stats.Failed))
		}
		table.Append(row)
	}
	table.Render()
}
