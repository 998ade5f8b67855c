// Package probe extracts technical video metadata by running ffprobe.
//
// The Extractor interface isolates the subprocess so the indexer can be
// tested with a fake. FFprobe is the production implementation:
//
//	p := probe.NewFFprobe("ffprobe", nil)
//	md, err := p.Extract(ctx, "/videos/movie.mkv")
//
// # Invocation
//
// FFprobe runs
//
//	ffprobe -v quiet -print_format json -show_format -show_streams <path>
//
// and reads only the first video stream plus the container format. The binary
// is resolved through PATH on every call, so installing ffprobe while the
// server runs takes effect on the next scan. Use Available to check up front:
//
//	if _, err := p.Available(); err != nil {
//		// errors.Is(err, probe.ErrProbeUnavailable)
//	}
//
// The context bounds the subprocess; cancelling it kills ffprobe.
//
// # Fields
//
//	DurationSeconds  format.duration
//	Resolution       "<width>x<height>" of the video stream
//	FrameRate        r_frame_rate, "num/den" evaluated; a zero denominator is dropped
//	VideoCodec       codec_name of the video stream
//	BitrateKbps      format.bit_rate / 1000
//
// Extraction is all-or-partial: any field ffprobe reports is returned as a
// non-nil pointer, and a result is only an error when no field at all could
// be read. A stream with no video but a container duration still yields that
// duration.
//
// # Errors
//
// Errors wrap one of three sentinels:
//   - ErrProbeUnavailable: the binary was not found
//   - ErrProbeError: ffprobe exited non-zero, was killed, or printed output that is not JSON
//   - ErrNoRelevantStreams: ffprobe succeeded but reported none of the fields above
//
// The indexer treats ErrProbeUnavailable specially and stops invoking the
// probe for the rest of the run.
//
// # Testing
//
// NewFFprobe accepts a Runner. Tests pass one that returns canned JSON
// instead of starting a process.
//
// On Windows, paths with non-ASCII characters are passed with the
// extended-length prefix.
package probe
