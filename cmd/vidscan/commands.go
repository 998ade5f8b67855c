package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"video-inventory/internal/database"
	"video-inventory/internal/indexer"
	"video-inventory/internal/playlist"
	"video-inventory/internal/probe"
	"video-inventory/internal/progress"

	"github.com/dustin/go-humanize"
)

// newExtractor is replaced in tests.
var newExtractor = func(binary string) probe.Extractor {
	return probe.NewFFprobe(binary, nil)
}

func runScan(ctx context.Context, db *database.Database, opts *options, root string, p *printer) int {
	extractor := newExtractor(opts.ffprobe)
	if ff, ok := extractor.(*probe.FFprobe); ok {
		if _, err := ff.Available(); err != nil {
			p.warnf("Warning: %v; metadata extraction will fail", err)
		}
	}

	sink := progress.NewSink(0)
	idx := indexer.New(db, extractor, sink, indexer.Config{
		Workers:     opts.workers,
		ItemTimeout: opts.timeout,
		SampleBytes: opts.sampleBytes,
	})

	done := make(chan struct{})
	followed := make(chan struct{})
	go func() {
		defer close(followed)
		p.follow(sink, done)
	}()

	summary, err := idx.Scan(ctx, root)
	close(done)
	<-followed

	switch {
	case errors.Is(err, indexer.ErrInvalidRoot):
		p.line(p.colors["fail"], fmt.Sprintf("Error: %v", err))
		return exitUsage
	case errors.Is(err, indexer.ErrNoVideoFiles):
		p.warnf("No video files found under %s (%d other files skipped)", summary.Root, summary.SkippedNonVideo)
		return exitError
	case err != nil:
		p.line(p.colors["fail"], fmt.Sprintf("Error: %v", err))
		return exitError
	}

	p.summary(summary)
	if summary.Aborted {
		return exitError
	}
	return exitOK
}

func runList(ctx context.Context, db *database.Database, stdout, stderr io.Writer) int {
	files, err := db.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to list files: %v\n", err)
		return exitError
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "Inventory is empty")
		return exitOK
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tDURATION\tRESOLUTION\tFPS\tCODEC\tBITRATE\tFINGERPRINT\tPATH")
	var total int64
	for _, f := range files {
		total += f.SizeBytes
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Name,
			humanize.IBytes(uint64(max(f.SizeBytes, 0))),
			formatSeconds(f.DurationSeconds),
			orDash(f.Resolution),
			formatFrameRate(f.FrameRate),
			orDash(f.VideoCodec),
			formatBitrate(f.BitrateKbps),
			shortFingerprint(f.Fingerprint),
			f.Path,
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "\n%s files, %s\n", humanize.Comma(int64(len(files))), humanize.IBytes(uint64(max(total, 0))))
	return exitOK
}

func runStats(ctx context.Context, db *database.Database, stdout, stderr io.Writer) int {
	stats, err := db.CalculateStats(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to calculate stats: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "Files:            %s\n", humanize.Comma(int64(stats.TotalFiles)))
	fmt.Fprintf(stdout, "  fingerprinted:  %s\n", humanize.Comma(int64(stats.FingerprintedFiles)))
	fmt.Fprintf(stdout, "  with metadata:  %s\n", humanize.Comma(int64(stats.WithMetadataFiles)))
	fmt.Fprintf(stdout, "Total size:       %s\n", humanize.IBytes(uint64(max(stats.TotalBytes, 0))))
	fmt.Fprintf(stdout, "Average size:     %s\n", humanize.IBytes(uint64(max(stats.AverageSizeBytes, 0))))
	fmt.Fprintf(stdout, "Total duration:   %s\n", formatDuration(stats.TotalDurationSeconds))
	fmt.Fprintf(stdout, "Average duration: %s\n", formatDuration(stats.AverageDurationSeconds))

	root, at, err := db.GetLastScan(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(stderr, "Warning: failed to read last scan: %v\n", err)
	case at.IsZero():
		fmt.Fprintln(stdout, "Last scan:        never")
	default:
		fmt.Fprintf(stdout, "Last scan:        %s (%s, %s)\n", root, humanize.Time(at), at.Local().Format(time.RFC1123))
	}
	return exitOK
}

func runExport(ctx context.Context, db *database.Database, target string, stdout, stderr io.Writer) int {
	files, err := db.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to list files: %v\n", err)
		return exitError
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	pl := playlist.New("inventory", paths)

	if target == "-" {
		err = playlist.WriteM3U(stdout, pl)
	} else {
		err = writePlaylistFile(target, pl)
	}
	if err != nil {
		if errors.Is(err, playlist.ErrEmptyPlaylist) {
			fmt.Fprintln(stderr, "Nothing to export: no stored file exists on disk")
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}

	exported := len(pl.Existing())
	if target != "-" {
		fmt.Fprintf(stdout, "Exported %d files to %s", exported, target)
		if missing := pl.Count - exported; missing > 0 {
			fmt.Fprintf(stdout, " (%d missing on disk)", missing)
		}
		fmt.Fprintln(stdout)
	}
	return exitOK
}

// createFile is replaced in tests.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// writePlaylistFile writes pl to target. The file is removed again when
// writing or closing it fails, so a partial playlist is never left behind.
func writePlaylistFile(target string, pl *playlist.Playlist) (err error) {
	f, err := createFile(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", target, cerr)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	return playlist.WriteM3U(f, pl)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatSeconds(sec *float64) string {
	if sec == nil {
		return "-"
	}
	return formatDuration(*sec)
}

// formatDuration renders seconds as h:mm:ss, or m:ss under an hour.
func formatDuration(sec float64) string {
	total := int64(sec + 0.5)
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatFrameRate(fps *float64) string {
	if fps == nil {
		return "-"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", *fps), "0"), ".")
}

func formatBitrate(kbps *int64) string {
	if kbps == nil {
		return "-"
	}
	return humanize.Comma(*kbps) + " kb/s"
}

func shortFingerprint(fp *string) string {
	if fp == nil {
		return "-"
	}
	if len(*fp) > 12 {
		return (*fp)[:12]
	}
	return *fp
}
