package media

import (
	"fmt"
	"regexp"
	"strings"

	"avconverter/internal/catalog"
)

// Options carries the per-batch conversion parameters. The struct is supplied
// once per batch invocation and never mutated while the batch runs.
type Options struct {
	TargetFormat string

	// Audio knobs. Zero values mean "let the encoder decide".
	AudioBitrate string // e.g. "192k"
	SampleRate   int    // Hz
	Channels     int

	// Video knobs, ignored for audio-only targets.
	Resolution   string // WxH, e.g. "1280x720"
	VideoBitrate string // e.g. "2500k"

	// Optional tag metadata written into the output container.
	Title  string
	Artist string
	Album  string

	// CoverArt references an image muxed into the output as an attached
	// picture. Empty means no cover art.
	CoverArt string
}

// MetadataField is one key=value tag pair in deterministic order.
type MetadataField struct {
	Key   string
	Value string
}

var (
	resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)
	bitratePattern    = regexp.MustCompile(`^\d+[kKmM]?$`)
)

// Validate checks the options for internal consistency. The target format must
// be in the catalog; numeric knobs must be positive when set; resolution and
// bitrates must match the forms the transcoder accepts.
func (o Options) Validate() error {
	format, ok := catalog.Lookup(o.TargetFormat)
	if !ok {
		return fmt.Errorf("unsupported target format %q", o.TargetFormat)
	}
	if o.AudioBitrate != "" && !bitratePattern.MatchString(o.AudioBitrate) {
		return fmt.Errorf("audio bitrate %q: want digits with optional k/M suffix", o.AudioBitrate)
	}
	if o.SampleRate < 0 {
		return fmt.Errorf("sample rate must be positive, got %d", o.SampleRate)
	}
	if o.Channels < 0 {
		return fmt.Errorf("channel count must be positive, got %d", o.Channels)
	}
	if o.Resolution != "" {
		if format.Kind != catalog.KindVideo {
			return fmt.Errorf("resolution set for audio target %q", format.Name)
		}
		if !resolutionPattern.MatchString(o.Resolution) {
			return fmt.Errorf("resolution %q: want WxH", o.Resolution)
		}
	}
	if o.VideoBitrate != "" {
		if format.Kind != catalog.KindVideo {
			return fmt.Errorf("video bitrate set for audio target %q", format.Name)
		}
		if !bitratePattern.MatchString(o.VideoBitrate) {
			return fmt.Errorf("video bitrate %q: want digits with optional k/M suffix", o.VideoBitrate)
		}
	}
	return nil
}

// Normalized returns a copy with the target format canonicalized.
func (o Options) Normalized() Options {
	o.TargetFormat = catalog.Normalize(o.TargetFormat)
	return o
}

// Metadata returns the set tag fields in a stable order.
func (o Options) Metadata() []MetadataField {
	fields := make([]MetadataField, 0, 3)
	if strings.TrimSpace(o.Title) != "" {
		fields = append(fields, MetadataField{Key: "title", Value: o.Title})
	}
	if strings.TrimSpace(o.Artist) != "" {
		fields = append(fields, MetadataField{Key: "artist", Value: o.Artist})
	}
	if strings.TrimSpace(o.Album) != "" {
		fields = append(fields, MetadataField{Key: "album", Value: o.Album})
	}
	return fields
}

// HasMetadata reports whether any tag field is set.
func (o Options) HasMetadata() bool {
	return len(o.Metadata()) > 0
}

// HasVideoSettings reports whether a resolution or video bitrate is set.
func (o Options) HasVideoSettings() bool {
	return o.Resolution != "" || o.VideoBitrate != ""
}

// HasCoverArt reports whether a cover-art image is referenced.
func (o Options) HasCoverArt() bool {
	return strings.TrimSpace(o.CoverArt) != ""
}
