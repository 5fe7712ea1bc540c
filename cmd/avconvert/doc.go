// Command avconvert converts audio and video files from the terminal.
//
// It wraps the conversion orchestrator in a small CLI: convert runs a
// batch against the native, shell, or cloud engine, formats and history
// report on capabilities and past runs, status and doctor inspect the
// environment, and serve exposes the read-only status API over HTTP.
// All commands share a --config flag; without it the default
// ~/.config/avconvert/config.toml is used when present.
package main
