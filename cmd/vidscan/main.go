package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"video-inventory/internal/database"
	"video-inventory/internal/fingerprint"
	"video-inventory/internal/indexer"
	"video-inventory/internal/logging"
	"video-inventory/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	dbPath      string
	workers     int
	timeout     time.Duration
	sampleBytes int64
	ffprobe     string
	verbose     bool
	noColor     bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals; a second signal exits immediately
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, aborting...")
		cancel()
		<-sigChan
		os.Exit(exitError)
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, isTerminal(os.Stdout))
	cancel()
	os.Exit(code)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// defaultDBPath honours DATABASE_DIR like the server does.
func defaultDBPath() string {
	if dir := os.Getenv("DATABASE_DIR"); dir != "" {
		return filepath.Join(dir, startup.DatabaseFileName)
	}
	return startup.DatabaseFileName
}

func parseArgs(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	var sample string

	fs := flag.NewFlagSet("vidscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dbPath, "db", defaultDBPath(), "inventory database path")
	fs.IntVar(&opts.workers, "workers", 0, "workers per scan phase (0 = default)")
	fs.DurationVar(&opts.timeout, "timeout", indexer.DefaultItemTimeout, "per-file timeout in each phase")
	fs.StringVar(&sample, "sample", humanize.IBytes(uint64(fingerprint.DefaultSampleBytes)), "fingerprint sample size")
	fs.StringVar(&opts.ffprobe, "ffprobe", "ffprobe", "ffprobe binary name or path")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	n, err := humanize.ParseBytes(sample)
	if err != nil || n == 0 {
		return nil, nil, fmt.Errorf("invalid -sample %q", sample)
	}
	opts.sampleBytes = int64(n)

	if opts.workers < 0 {
		return nil, nil, fmt.Errorf("invalid -workers %d", opts.workers)
	}
	if opts.timeout <= 0 {
		return nil, nil, fmt.Errorf("invalid -timeout %v", opts.timeout)
	}

	return opts, fs.Args(), nil
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, tty bool) int {
	opts, rest, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}
	if len(rest) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	if opts.noColor || !tty {
		color.NoColor = true
	}
	if opts.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		// Log lines would interleave with the live progress output
		logging.SetLevel(logging.LevelWarn)
	}
	logging.SetOutput(stderr)

	command, cmdArgs := rest[0], rest[1:]

	switch command {
	case "scan", "list", "stats", "export":
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return exitUsage
	}

	if command == "scan" && len(cmdArgs) != 1 {
		fmt.Fprintln(stderr, "Error: scan requires exactly one root directory")
		return exitUsage
	}
	if command == "export" && len(cmdArgs) != 1 {
		fmt.Fprintln(stderr, "Error: export requires an output file (or - for stdout)")
		return exitUsage
	}

	if command == "scan" {
		if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o755); err != nil {
			fmt.Fprintf(stderr, "Error: failed to create database directory: %v\n", err)
			return exitError
		}
	} else if _, err := os.Stat(opts.dbPath); err != nil {
		fmt.Fprintf(stderr, "Error: no inventory at %s (run scan first)\n", opts.dbPath)
		return exitError
	}

	db, err := database.New(ctx, opts.dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open database: %v\n", err)
		return exitError
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	switch command {
	case "scan":
		return runScan(ctx, db, opts, cmdArgs[0], newPrinter(stdout, opts.verbose, tty && !opts.verbose))
	case "list":
		return runList(ctx, db, stdout, stderr)
	case "stats":
		return runStats(ctx, db, stdout, stderr)
	default:
		return runExport(ctx, db, cmdArgs[0], stdout, stderr)
	}
}

// sanitizeCommand replaces anything outside [a-zA-Z0-9_-] so untrusted input
// is safe to echo.
func sanitizeCommand(cmd string) string {
	out := []rune(cmd)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	if len(out) > 64 {
		out = out[:64]
	}
	return string(out)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vidscan [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan <root>     Scan a directory tree into the inventory")
	fmt.Fprintln(w, "  list            List stored files")
	fmt.Fprintln(w, "  stats           Show inventory totals")
	fmt.Fprintln(w, "  export <file>   Write an M3U playlist (- for stdout)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -db path        Inventory database (default: $DATABASE_DIR/inventory.db)")
	fmt.Fprintln(w, "  -workers n      Workers per scan phase")
	fmt.Fprintln(w, "  -timeout d      Per-file timeout (default: 30s)")
	fmt.Fprintln(w, "  -sample size    Fingerprint sample size (default: 2.0 MiB)")
	fmt.Fprintln(w, "  -ffprobe path   ffprobe binary")
	fmt.Fprintln(w, "  -v              Verbose output")
	fmt.Fprintln(w, "  -no-color       Disable colours")
}
