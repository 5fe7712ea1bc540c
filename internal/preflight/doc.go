// Package preflight provides readiness checks for the directories, external
// binaries, and remote API the converter depends on.
//
// The CLI doctor and status commands use these to report health before a
// batch is attempted: directory checks confirm the configured paths are
// usable, CheckSystemDeps resolves the transcoding binaries, and
// CheckCloudAPI verifies the remote conversion endpoint accepts the
// configured key. Checks gated by configuration are skipped when the feature
// is not set up.
package preflight
