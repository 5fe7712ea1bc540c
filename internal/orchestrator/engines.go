package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"avconverter/internal/config"
	"avconverter/internal/engine"
	"avconverter/internal/engine/cloud"
	"avconverter/internal/engine/native"
	"avconverter/internal/engine/shell"
	"avconverter/internal/services/cloudapi"
)

// EngineSet bundles the concrete backends the orchestrator dispatches to.
// A nil entry means the backend is not configured; selecting it fails the
// batch up front rather than per item.
type EngineSet struct {
	Native engine.Converter
	Shell  engine.Converter
	Cloud  engine.Converter
}

func (s EngineSet) converterFor(t engine.Type) engine.Converter {
	switch t {
	case engine.Native:
		return s.Native
	case engine.Shell:
		return s.Shell
	case engine.Cloud:
		return s.Cloud
	default:
		return nil
	}
}

// DefaultEngines wires the backend set from configuration. The cloud engine
// is present only when a base URL and API key are configured.
func DefaultEngines(cfg *config.Config) (EngineSet, error) {
	nativeEngine, err := native.New(cfg.AfconvertBinary(), cfg.ToolSearchPaths())
	if err != nil {
		return EngineSet{}, fmt.Errorf("native engine: %w", err)
	}
	shellEngine, err := shell.New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.ToolSearchPaths())
	if err != nil {
		return EngineSet{}, fmt.Errorf("shell engine: %w", err)
	}

	set := EngineSet{Native: nativeEngine, Shell: shellEngine}

	if strings.TrimSpace(cfg.Cloud.BaseURL) != "" && strings.TrimSpace(cfg.Cloud.APIKey) != "" {
		wait, err := cloudapi.NewStrategy(
			cfg.Cloud.WaitStrategy,
			time.Duration(cfg.Cloud.WaitDelay)*time.Second,
			time.Duration(cfg.Cloud.PollInterval)*time.Second,
		)
		if err != nil {
			return EngineSet{}, fmt.Errorf("cloud wait strategy: %w", err)
		}
		client, err := cloudapi.New(cloudapi.Config{
			BaseURL:        cfg.Cloud.BaseURL,
			APIKey:         cfg.Cloud.APIKey,
			RequestTimeout: time.Duration(cfg.Cloud.RequestTimeout) * time.Second,
			WaitBudget:     time.Duration(cfg.Cloud.WaitBudget) * time.Second,
			Wait:           wait,
		})
		if err != nil {
			return EngineSet{}, fmt.Errorf("cloud client: %w", err)
		}
		cloudEngine, err := cloud.New(client)
		if err != nil {
			return EngineSet{}, fmt.Errorf("cloud engine: %w", err)
		}
		set.Cloud = cloudEngine
	}

	return set, nil
}
