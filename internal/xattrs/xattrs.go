// Package xattrs tags converted files with conversion metadata through
// user-namespace extended attributes. Tagging is best effort: callers log
// failures and keep the conversion outcome unchanged.
package xattrs

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Attribute names written onto output files.
const (
	AttrTitle  = "user.avconverter.title"
	AttrArtist = "user.avconverter.artist"
	AttrAlbum  = "user.avconverter.album"
	AttrSource = "user.avconverter.source"
	AttrEngine = "user.avconverter.engine"
)

// Tags holds the attribute values applied to one output file. Empty fields
// are skipped.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Source string
	Engine string
}

// Empty reports whether there is nothing to write.
func (t Tags) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Source == "" && t.Engine == ""
}

// Apply writes the populated tags onto path and returns the first failure.
func Apply(path string, tags Tags) error {
	var firstErr error
	set := func(attr, value string) {
		if value == "" {
			return
		}
		if err := unix.Setxattr(path, attr, []byte(value), 0); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("set %s: %w", attr, err)
		}
	}
	set(AttrTitle, tags.Title)
	set(AttrArtist, tags.Artist)
	set(AttrAlbum, tags.Album)
	set(AttrSource, tags.Source)
	set(AttrEngine, tags.Engine)
	return firstErr
}

// Get reads one attribute. A missing attribute is an empty value, not an
// error.
func Get(path, attr string) (string, error) {
	size, err := unix.Getxattr(path, attr, nil)
	if err != nil {
		if errors.Is(err, errAttrAbsent) {
			return "", nil
		}
		return "", fmt.Errorf("get %s: %w", attr, err)
	}
	if size == 0 {
		return "", nil
	}
	buf := make([]byte, size)
	n, err := unix.Getxattr(path, attr, buf)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", attr, err)
	}
	return string(buf[:n]), nil
}
