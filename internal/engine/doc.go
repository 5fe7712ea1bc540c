// Package engine defines the common contract shared by the conversion
// backends and the process executor they run external tools through.
//
// Each backend lives in a subpackage (native, shell, cloud) and implements
// Converter: one blocking Convert call per item with exactly one terminal
// outcome, progress delivered through a callback while the conversion runs.
package engine
