// Package media holds the conversion parameter types shared by every engine
// and the orchestrator: per-batch Options and output path derivation.
package media
