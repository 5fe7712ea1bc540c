package media

import (
	"testing"
)

func TestValidateAcceptsTypicalAudioOptions(t *testing.T) {
	opts := Options{
		TargetFormat: "mp3",
		AudioBitrate: "192k",
		SampleRate:   44100,
		Channels:     2,
		Title:        "Track",
		Artist:       "Band",
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"unknown format", Options{TargetFormat: "xyz"}},
		{"bad bitrate", Options{TargetFormat: "mp3", AudioBitrate: "fast"}},
		{"negative sample rate", Options{TargetFormat: "mp3", SampleRate: -1}},
		{"negative channels", Options{TargetFormat: "mp3", Channels: -2}},
		{"resolution on audio", Options{TargetFormat: "mp3", Resolution: "1280x720"}},
		{"bad resolution", Options{TargetFormat: "mp4", Resolution: "wide"}},
		{"video bitrate on audio", Options{TargetFormat: "flac", VideoBitrate: "2500k"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.opts.Validate(); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestValidateAcceptsVideoOptions(t *testing.T) {
	opts := Options{
		TargetFormat: "mp4",
		Resolution:   "1920x1080",
		VideoBitrate: "2500k",
		AudioBitrate: "192k",
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestMetadataOrderIsStable(t *testing.T) {
	opts := Options{
		TargetFormat: "m4a",
		Album:        "Album",
		Title:        "Title",
		Artist:       "Artist",
	}
	fields := opts.Metadata()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	wantOrder := []string{"title", "artist", "album"}
	for i, key := range wantOrder {
		if fields[i].Key != key {
			t.Fatalf("expected field %d to be %s, got %s", i, key, fields[i].Key)
		}
	}

	if !opts.HasMetadata() {
		t.Fatal("expected HasMetadata true")
	}
	if (Options{TargetFormat: "mp3"}).HasMetadata() {
		t.Fatal("expected HasMetadata false without tags")
	}
}

func TestNormalizedCanonicalizesFormat(t *testing.T) {
	opts := Options{TargetFormat: ".MPEG"}
	if got := opts.Normalized().TargetFormat; got != "mpg" {
		t.Fatalf("expected mpg, got %q", got)
	}
}

func TestOutputPathFor(t *testing.T) {
	cases := []struct {
		name      string
		source    string
		outputDir string
		format    string
		want      string
	}{
		{"next to source", "/media/music/song.wav", "", "mp3", "/media/music/song.mp3"},
		{"into output dir", "/media/music/song.wav", "/converted", "flac", "/converted/song.flac"},
		{"no source extension", "/media/music/song", "", "mp3", "/media/music/song.mp3"},
		{"alias format", "/media/clip.avi", "/out", "mpeg", "/out/clip.mpg"},
		{"dotted name", "/media/my.album.track.wav", "", "m4a", "/media/my.album.track.m4a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OutputPathFor(tc.source, tc.outputDir, tc.format); got != tc.want {
				t.Fatalf("OutputPathFor(%q, %q, %q) = %q, want %q", tc.source, tc.outputDir, tc.format, got, tc.want)
			}
		})
	}
}
