package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"avconverter/internal/preflight"
	"avconverter/internal/queue"
)

func newDoctorCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose missing tools and misconfigured paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			writeSectionHeader(out, "Dependencies", colorize)
			var missing []string
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				writeStatusLine(out, dep.Name, dependencyKind(dep), dependencyDetail(dep), colorize)
				if !dep.Available && !dep.Optional {
					missing = append(missing, dep.Name)
				}
			}

			fmt.Fprintln(out)
			writeSectionHeader(out, "Environment", colorize)
			checks := preflight.RunAll(cmd.Context(), cfg)
			failed := 0
			for _, check := range checks {
				kind := statusOK
				if !check.Passed {
					kind = statusError
					failed++
				}
				writeStatusLine(out, check.Name, kind, check.Detail, colorize)
			}

			fmt.Fprintln(out)
			writeSectionHeader(out, "Storage", colorize)
			storeErr := cmdCtx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				writeStatusLine(out, "Batch database", statusOK, store.Path(), colorize)
				writeStatusLine(out, "Recorded items", statusInfo, health.String(), colorize)
				return nil
			})
			if storeErr != nil {
				writeStatusLine(out, "Batch database", statusError, storeErr.Error(), colorize)
			}

			fmt.Fprintln(out)
			switch {
			case len(missing) > 0:
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			case failed > 0:
				return fmt.Errorf("%d of %d environment checks failed", failed, len(checks))
			case storeErr != nil:
				return fmt.Errorf("batch database unavailable: %w", storeErr)
			default:
				fmt.Fprintln(out, "All checks passed")
				return nil
			}
		},
	}
}
