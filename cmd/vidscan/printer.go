package main

import (
	"fmt"
	"io"
	"time"

	"video-inventory/internal/indexer"
	"video-inventory/internal/progress"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// printer renders progress events. In live mode each phase gets a progress
// bar advanced by its per-file events; failures and phase boundaries always
// get their own line.
type printer struct {
	out     io.Writer
	verbose bool
	live    bool

	// bar tracks the running phase in live mode; nil between phases.
	bar *progressbar.ProgressBar

	colors map[string]*color.Color
}

func newPrinter(out io.Writer, verbose, live bool) *printer {
	return &printer{
		out:     out,
		verbose: verbose,
		live:    live,
		colors: map[string]*color.Color{
			"ok":      color.New(color.FgGreen),
			"skip":    color.New(color.FgCyan),
			"fail":    color.New(color.FgRed),
			"warn":    color.New(color.FgYellow),
			"heading": color.New(color.FgWhite, color.Bold),
			"dim":     color.New(color.Faint),
		},
	}
}

func (p *printer) outcomeColor(o progress.Outcome) *color.Color {
	switch o {
	case progress.OutcomeProcessed:
		return p.colors["ok"]
	case progress.OutcomeSkipped:
		return p.colors["skip"]
	case progress.OutcomeFailed:
		return p.colors["fail"]
	default:
		return p.colors["warn"]
	}
}

// follow prints events as they arrive until done is closed, then prints
// whatever is left.
func (p *printer) follow(sink *progress.Sink, done <-chan struct{}) {
	for {
		select {
		case <-sink.Notify():
			for _, e := range sink.Drain() {
				p.event(e)
			}
		case <-done:
			for _, e := range sink.Drain() {
				p.event(e)
			}
			p.endBar()
			return
		}
	}
}

func (p *printer) event(e progress.Event) {
	switch e.Kind {
	case progress.KindItem:
		switch {
		case e.Outcome == progress.OutcomeFailed:
			p.line(p.colors["fail"], e.String())
		case p.verbose:
			p.line(p.outcomeColor(e.Outcome), e.String())
		}
		if p.bar != nil {
			_ = p.bar.Add(1)
		}
	case progress.KindNonVideo, progress.KindDiscovery:
		if p.verbose {
			p.line(p.colors["dim"], e.String())
		}
	case progress.KindPhaseStarted:
		p.line(p.colors["heading"], e.String())
		if p.live && e.Total > 0 {
			p.bar = p.newBar(e.Total, fmt.Sprintf("%-8s", e.Phase))
		}
	case progress.KindPhaseFinished:
		p.endBar()
		p.line(p.colors["heading"], e.String())
	case progress.KindPhaseSkipped, progress.KindRunFailed:
		p.line(p.colors["warn"], e.String())
	default:
		p.line(p.colors["heading"], e.String())
	}
}

// newBar builds a bar with the same layout as progressbar.Default, but
// written to the printer's output and cleared once the phase completes.
func (p *printer) newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// endBar removes the bar of an aborted or finished phase from the screen.
func (p *printer) endBar() {
	if p.bar == nil {
		return
	}
	if !p.bar.IsFinished() {
		_ = p.bar.Clear()
	}
	p.bar = nil
}

// line prints text on its own line. A live bar is cleared first and redraws
// itself on the next file.
func (p *printer) line(c *color.Color, text string) {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
	c.Fprintln(p.out, text)
}

func (p *printer) warnf(format string, args ...interface{}) {
	p.line(p.colors["warn"], fmt.Sprintf(format, args...))
}

// summary prints the end-of-run report.
func (p *printer) summary(s indexer.Summary) {
	p.endBar()

	title := "Scan complete"
	titleColor := color.New(color.FgGreen, color.Bold)
	if s.Aborted {
		title = "Scan aborted"
		titleColor = color.New(color.FgYellow, color.Bold)
	}

	fmt.Fprintln(p.out)
	titleColor.Fprintf(p.out, "%s in %s\n", title, s.Duration().Round(time.Millisecond))
	fmt.Fprintf(p.out, "  Run:        %s\n", s.RunID)
	fmt.Fprintf(p.out, "  Root:       %s\n", s.Root)
	fmt.Fprintf(p.out, "  Videos:     %s (non-video skipped: %s)\n",
		humanize.Comma(int64(s.Videos)), humanize.Comma(int64(s.SkippedNonVideo)))
	fmt.Fprintf(p.out, "  Metadata:   %s\n", p.counts(s.Metadata))
	switch {
	case s.HashPhaseRan:
		fmt.Fprintf(p.out, "  Hash:       %s\n", p.counts(s.Hash))
	case s.Aborted:
		p.colors["warn"].Fprintln(p.out, "  Hash:       not run (scan aborted)")
	default:
		p.colors["warn"].Fprintln(p.out, "  Hash:       not run (no file passed the metadata phase)")
	}
	fmt.Fprintf(p.out, "  Store:      %s\n", s.StorePath)
}

func (p *printer) counts(c progress.Counts) string {
	text := fmt.Sprintf("%s processed, %s skipped, %s failed",
		p.colors["ok"].Sprint(humanize.Comma(int64(c.Processed))),
		p.colors["skip"].Sprint(humanize.Comma(int64(c.Skipped))),
		p.colors["fail"].Sprint(humanize.Comma(int64(c.Failed))))
	if c.Aborted > 0 {
		text += fmt.Sprintf(", %s aborted", p.colors["warn"].Sprint(humanize.Comma(int64(c.Aborted))))
	}
	return text
}
