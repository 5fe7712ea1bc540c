package media

import (
	"path/filepath"
	"strings"

	"avconverter/internal/catalog"
)

// OutputPathFor derives the destination for a conversion: the source basename
// with the target extension, placed in outputDir when one is configured and
// next to the source otherwise.
func OutputPathFor(sourcePath, outputDir, targetFormat string) string {
	base := filepath.Base(sourcePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	return filepath.Join(dir, base+"."+catalog.Normalize(targetFormat))
}
