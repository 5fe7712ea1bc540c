package catalog

import (
	"path/filepath"
	"strings"
)

// Kind classifies a container as audio-only or video.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Format describes one supported container.
type Format struct {
	Name         string // canonical lowercase extension
	Kind         Kind
	Display      string // human-readable name
	NativeExport bool   // producible by the system export facility
}

type entry struct {
	name    string
	kind    Kind
	display string
	native  bool
	aliases []string // alternate extensions for the same container
}

var formats = []entry{
	{"mp3", KindAudio, "MP3", false, nil},
	{"aac", KindAudio, "AAC", true, nil},
	{"m4a", KindAudio, "M4A", true, nil},
	{"flac", KindAudio, "FLAC", false, nil},
	{"wav", KindAudio, "WAV", true, nil},
	{"ogg", KindAudio, "Ogg Vorbis", false, nil},
	{"wma", KindAudio, "WMA", false, nil},
	{"aiff", KindAudio, "AIFF", true, []string{"aif"}},
	{"caf", KindAudio, "CAF", true, nil},
	{"mp4", KindVideo, "MP4", false, nil},
	{"mov", KindVideo, "QuickTime", false, nil},
	{"avi", KindVideo, "AVI", false, nil},
	{"mkv", KindVideo, "Matroska", false, nil},
	{"webm", KindVideo, "WebM", false, nil},
	{"m4v", KindVideo, "M4V", false, nil},
	{"flv", KindVideo, "FLV", false, nil},
	{"wmv", KindVideo, "WMV", false, nil},
	{"mpg", KindVideo, "MPEG", false, []string{"mpeg"}},
	{"3gp", KindVideo, "3GP", false, nil},
}

// Index map built at init time.
var byName map[string]*entry

func init() {
	byName = make(map[string]*entry, len(formats)*2)
	for i := range formats {
		e := &formats[i]
		byName[e.name] = e
		for _, alias := range e.aliases {
			byName[alias] = e
		}
	}
}

// Normalize canonicalizes a format identifier: lowercased, trimmed, with any
// leading dot removed. Aliases map to their canonical name ("mpeg" -> "mpg").
func Normalize(id string) string {
	cleaned := strings.ToLower(strings.TrimSpace(id))
	cleaned = strings.TrimPrefix(cleaned, ".")
	if e, ok := byName[cleaned]; ok {
		return e.name
	}
	return cleaned
}

func lookup(id string) *entry {
	cleaned := strings.ToLower(strings.TrimSpace(id))
	cleaned = strings.TrimPrefix(cleaned, ".")
	if cleaned == "" {
		return nil
	}
	return byName[cleaned]
}

// Lookup returns the catalog record for a format identifier or extension.
func Lookup(id string) (Format, bool) {
	e := lookup(id)
	if e == nil {
		return Format{}, false
	}
	return Format{Name: e.name, Kind: e.kind, Display: e.display, NativeExport: e.native}, true
}

// IsValidFormat reports whether the identifier names a supported output format.
func IsValidFormat(id string) bool {
	return lookup(id) != nil
}

// SupportedOutputFormats returns every supported output format name, audio
// formats first, in catalog order.
func SupportedOutputFormats() []string {
	names := make([]string, 0, len(formats))
	for _, kind := range []Kind{KindAudio, KindVideo} {
		for i := range formats {
			if formats[i].kind == kind {
				names = append(names, formats[i].name)
			}
		}
	}
	return names
}

// FormatsByKind returns the catalog records of the given kind in catalog order.
func FormatsByKind(kind Kind) []Format {
	result := make([]Format, 0, len(formats))
	for i := range formats {
		if formats[i].kind != kind {
			continue
		}
		e := &formats[i]
		result = append(result, Format{Name: e.name, Kind: e.kind, Display: e.display, NativeExport: e.native})
	}
	return result
}

// All returns every catalog record, audio first.
func All() []Format {
	result := make([]Format, 0, len(formats))
	for _, kind := range []Kind{KindAudio, KindVideo} {
		result = append(result, FormatsByKind(kind)...)
	}
	return result
}

// NativeExportable reports whether the system export facility can produce the
// given output format.
func NativeExportable(id string) bool {
	e := lookup(id)
	return e != nil && e.native
}

// KindOfPath classifies a file by its extension.
func KindOfPath(path string) (Kind, bool) {
	e := lookup(filepath.Ext(path))
	if e == nil {
		return "", false
	}
	return e.kind, true
}

// CanConvert reports whether a conversion between the two kinds is meaningful.
// Extracting audio from video is supported; synthesizing video from an
// audio-only source is not.
func CanConvert(source, target Kind) bool {
	if source == KindAudio && target == KindVideo {
		return false
	}
	return true
}
