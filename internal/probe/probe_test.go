package probe

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

type fakeRunner struct {
	output []byte
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

func newTestProbe(r Runner) *FFprobe {
	p := NewFFprobe("ffprobe", r)
	p.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	return p
}

const fullOutput = `{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
    {"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 240, "r_frame_rate": "1/1"}
  ],
  "format": {"duration": "12.500000", "bit_rate": "4500999"}
}`

func TestExtractFull(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{output: []byte(fullOutput)}
	md, err := newTestProbe(r).Extract(context.Background(), "/videos/a.mp4")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if md.Resolution == nil || *md.Resolution != "1920x1080" {
		t.Errorf("resolution = %v, want 1920x1080", deref(md.Resolution))
	}
	if md.VideoCodec == nil || *md.VideoCodec != "h264" {
		t.Errorf("codec = %v, want h264", deref(md.VideoCodec))
	}
	if md.FrameRate == nil || *md.FrameRate < 29.97 || *md.FrameRate > 29.98 {
		t.Errorf("frame rate = %v, want ~29.97", deref(md.FrameRate))
	}
	if md.DurationSeconds == nil || *md.DurationSeconds != 12.5 {
		t.Errorf("duration = %v, want 12.5", deref(md.DurationSeconds))
	}
	if md.BitrateKbps == nil || *md.BitrateKbps != 4500 {
		t.Errorf("bitrate = %v, want 4500", deref(md.BitrateKbps))
	}

	wantArgs := []string{"/usr/bin/ffprobe", "-v", "quiet", "-print_format", "json",
		"-show_format", "-show_streams", "/videos/a.mp4"}
	if len(r.calls) != 1 || !reflect.DeepEqual(r.calls[0], wantArgs) {
		t.Errorf("runner calls = %v, want %v", r.calls, wantArgs)
	}
}

func TestExtractPartial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		check  func(t *testing.T, md *Metadata)
	}{
		{
			name:   "format only",
			output: `{"streams": [], "format": {"duration": "3.0"}}`,
			check: func(t *testing.T, md *Metadata) {
				if md.DurationSeconds == nil || *md.DurationSeconds != 3 {
					t.Errorf("duration = %v", deref(md.DurationSeconds))
				}
				if md.Resolution != nil || md.VideoCodec != nil || md.FrameRate != nil {
					t.Error("stream fields should be nil without a video stream")
				}
			},
		},
		{
			name:   "zero denominator frame rate",
			output: `{"streams": [{"codec_type": "video", "codec_name": "vp9", "r_frame_rate": "0/0"}], "format": {}}`,
			check: func(t *testing.T, md *Metadata) {
				if md.FrameRate != nil {
					t.Errorf("frame rate = %v, want nil", *md.FrameRate)
				}
				if md.VideoCodec == nil || *md.VideoCodec != "vp9" {
					t.Errorf("codec = %v", deref(md.VideoCodec))
				}
			},
		},
		{
			name:   "zero dimensions",
			output: `{"streams": [{"codec_type": "video", "codec_name": "hevc", "width": 0, "height": 720}], "format": {}}`,
			check: func(t *testing.T, md *Metadata) {
				if md.Resolution != nil {
					t.Errorf("resolution = %v, want nil", *md.Resolution)
				}
			},
		},
		{
			name:   "unparseable bitrate",
			output: `{"streams": [], "format": {"duration": "1.5", "bit_rate": "N/A"}}`,
			check: func(t *testing.T, md *Metadata) {
				if md.BitrateKbps != nil {
					t.Errorf("bitrate = %v, want nil", *md.BitrateKbps)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			md, err := newTestProbe(&fakeRunner{output: []byte(tt.output)}).Extract(context.Background(), "x.mkv")
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			tt.check(t, md)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		runner  *fakeRunner
		wantErr error
	}{
		{"invalid json", &fakeRunner{output: []byte("not json")}, ErrProbeError},
		{"empty output", &fakeRunner{output: nil}, ErrProbeError},
		{"non-zero exit", &fakeRunner{err: errors.New("exit status 1")}, ErrProbeError},
		{"nothing relevant", &fakeRunner{output: []byte(`{"streams": [{"codec_type": "audio", "codec_name": "aac"}], "format": {}}`)}, ErrNoRelevantStreams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			md, err := newTestProbe(tt.runner).Extract(context.Background(), "x.mkv")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
			}
			if md != nil {
				t.Errorf("Extract() returned metadata alongside error")
			}
		})
	}
}

func TestExtractUnavailable(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{output: []byte(fullOutput)}
	p := NewFFprobe("ffprobe-missing", r)
	p.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := p.Extract(context.Background(), "x.mkv")
	if !errors.Is(err, ErrProbeUnavailable) {
		t.Fatalf("Extract() error = %v, want ErrProbeUnavailable", err)
	}
	if len(r.calls) != 0 {
		t.Error("runner should not be invoked when the binary is missing")
	}
}

func TestExtractCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{err: errors.New("signal: killed")}
	_, err := newTestProbe(r).Extract(ctx, "x.mkv")
	if !errors.Is(err, ErrProbeError) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract() error = %v, want ErrProbeError wrapping context.Canceled", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"25/1", 25, true},
		{"24000/1001", 24000.0 / 1001.0, true},
		{"0/0", 0, false},
		{"30/0", 0, false},
		{"30", 0, false},
		{"", 0, false},
		{"a/b", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseFrameRate(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewFFprobeDefaults(t *testing.T) {
	t.Parallel()

	p := NewFFprobe("", nil)
	if p.Binary() != "ffprobe" {
		t.Errorf("Binary() = %q, want ffprobe", p.Binary())
	}
	if _, ok := p.runner.(*CommandRunner); !ok {
		t.Errorf("default runner = %T, want *CommandRunner", p.runner)
	}
}
