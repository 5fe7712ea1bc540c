// Package shell converts media by driving the external ffmpeg binary. It
// resolves the tool from the configured install paths before falling back
// to PATH, builds the argument vector from the conversion options, and
// estimates fractional progress by parsing the tool's elapsed-time output
// against an upfront duration probe.
package shell
