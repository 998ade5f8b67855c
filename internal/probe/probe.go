package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"video-inventory/internal/logging"
	"video-inventory/internal/metrics"
)

var (
	// ErrProbeUnavailable means the ffprobe binary could not be found.
	ErrProbeUnavailable = errors.New("ffprobe not found")
	// ErrProbeError means ffprobe failed or produced output that could not be parsed.
	ErrProbeError = errors.New("ffprobe failed")
	// ErrNoRelevantStreams means ffprobe succeeded but reported none of the fields we store.
	ErrNoRelevantStreams = errors.New("no relevant metadata found")
)

// Metadata holds the technical attributes of a video file. Each field is nil
// when ffprobe did not report it.
type Metadata struct {
	DurationSeconds *float64
	Resolution      *string
	FrameRate       *float64
	VideoCodec      *string
	BitrateKbps     *int64
}

// Empty reports whether no field was extracted.
func (m *Metadata) Empty() bool {
	return m == nil || (m.DurationSeconds == nil && m.Resolution == nil &&
		m.FrameRate == nil && m.VideoCodec == nil && m.BitrateKbps == nil)
}

// Extractor reads technical metadata for one file.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Metadata, error)
}

// FFprobe extracts metadata by running the ffprobe binary.
type FFprobe struct {
	binary   string
	runner   Runner
	lookPath func(string) (string, error)
}

// NewFFprobe creates an extractor for the given binary name or path. An empty
// binary defaults to "ffprobe" resolved through PATH. A nil runner uses
// os/exec.
func NewFFprobe(binary string, runner Runner) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	if runner == nil {
		runner = NewCommandRunner()
	}
	return &FFprobe{
		binary:   binary,
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

// Binary returns the configured ffprobe name or path.
func (p *FFprobe) Binary() string {
	return p.binary
}

// Available resolves the binary and returns its full path.
func (p *FFprobe) Available() (string, error) {
	path, err := p.lookPath(p.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrProbeUnavailable, p.binary, err)
	}
	return path, nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		RFrameRate string `json:"r_frame_rate,omitempty"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Extract runs ffprobe against path and returns whatever fields it reports.
func (p *FFprobe) Extract(ctx context.Context, path string) (*Metadata, error) {
	bin, err := p.Available()
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("unavailable").Inc()
		return nil, err
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		longPath(path),
	}

	start := time.Now()
	output, err := p.runner.Run(ctx, bin, args...)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("probe_error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrProbeError, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrProbeError, path, err)
	}

	md, err := parse(output)
	if err != nil {
		reason := "probe_error"
		if errors.Is(err, ErrNoRelevantStreams) {
			reason = "no_streams"
		}
		metrics.ProbeFailuresTotal.WithLabelValues(reason).Inc()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Debug("probe: %s duration=%v resolution=%v codec=%v", path,
		deref(md.DurationSeconds), deref(md.Resolution), deref(md.VideoCodec))
	return md, nil
}

func parse(output []byte) (*Metadata, error) {
	var data ffprobeOutput
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("%w: parse output: %w", ErrProbeError, err)
	}

	md := &Metadata{}

	for _, stream := range data.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.Width > 0 && stream.Height > 0 {
			res := fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			md.Resolution = &res
		}
		if fps, ok := parseFrameRate(stream.RFrameRate); ok {
			md.FrameRate = &fps
		}
		if stream.CodecName != "" {
			codec := stream.CodecName
			md.VideoCodec = &codec
		}
		break
	}

	if data.Format.Duration != "" {
		if d, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil {
			md.DurationSeconds = &d
		}
	}
	if data.Format.BitRate != "" {
		if br, err := strconv.ParseInt(data.Format.BitRate, 10, 64); err == nil {
			kbps := br / 1000
			md.BitrateKbps = &kbps
		}
	}

	if md.Empty() {
		return nil, ErrNoRelevantStreams
	}
	return md, nil
}

// parseFrameRate converts an ffprobe "num/den" rate. A zero denominator
// yields no value.
func parseFrameRate(rate string) (float64, bool) {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func deref[T any](p *T) any {
	if p == nil {
		return "-"
	}
	return *p
}
