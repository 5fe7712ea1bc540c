// Package native converts audio through the operating system's bundled
// export tool (afconvert). Only the formats with an export preset are
// supported; everything else reports UnsupportedConversion so the caller
// can fall back to the shell engine.
package native
