package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"avconverter/internal/api"
	"avconverter/internal/deps"
	"avconverter/internal/logging"
	"avconverter/internal/preflight"
	"avconverter/internal/queue"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment checks, queue counts, and the latest batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, cmdCtx, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the status snapshot as JSON")
	return cmd
}

type statusCheckReport struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type statusDependencyReport struct {
	Name      string `json:"name"`
	Command   string `json:"command,omitempty"`
	Available bool   `json:"available"`
	Optional  bool   `json:"optional"`
	Detail    string `json:"detail,omitempty"`
}

type statusReport struct {
	Checks           []statusCheckReport      `json:"checks"`
	Dependencies     []statusDependencyReport `json:"dependencies"`
	Queue            map[string]int           `json:"queue"`
	LatestBatch      *api.Batch               `json:"latestBatch,omitempty"`
	LatestBatchItems map[string]int           `json:"latestBatchItems,omitempty"`
	Converting       []string                 `json:"converting,omitempty"`
}

func runStatus(cmd *cobra.Command, cmdCtx *commandContext, jsonOut bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	checks := preflight.RunAll(ctx, cfg)
	depStatuses := preflight.CheckSystemDeps(cfg)

	var (
		stats      map[queue.Status]int
		latest     *queue.Batch
		batchStats map[queue.Status]int
		active     []*queue.Item
	)
	err = cmdCtx.withStore(func(store *queue.Store) error {
		var err error
		if stats, err = store.Stats(ctx); err != nil {
			return err
		}
		if latest, err = store.LatestBatch(ctx); err != nil {
			return err
		}
		if latest != nil {
			if batchStats, err = store.StatsForBatch(ctx, latest.ID); err != nil {
				return err
			}
		}
		active, err = store.List(ctx, queue.StatusConverting)
		return err
	})
	if err != nil {
		return err
	}

	titleCaser := cases.Title(language.English)
	subjects := make([]string, 0, len(active))
	for _, item := range active {
		subjects = append(subjects, logging.FormatSubject(
			item.Engine,
			strconv.FormatInt(item.ID, 10),
			titleCaser.String(item.ProgressStage),
		))
	}

	if jsonOut {
		report := statusReport{
			Queue:            api.MergeQueueStats(stats),
			LatestBatch:      api.FromBatch(latest),
			LatestBatchItems: api.MergeQueueStats(batchStats),
			Converting:       subjects,
		}
		for _, check := range checks {
			report.Checks = append(report.Checks, statusCheckReport{
				Name:   check.Name,
				Passed: check.Passed,
				Detail: check.Detail,
			})
		}
		for _, dep := range depStatuses {
			report.Dependencies = append(report.Dependencies, statusDependencyReport{
				Name:      dep.Name,
				Command:   dep.Command,
				Available: dep.Available,
				Optional:  dep.Optional,
				Detail:    dep.Detail,
			})
		}
		return writeJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	writeSectionHeader(out, "System", colorize)
	for _, check := range checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		writeStatusLine(out, check.Name, kind, check.Detail, colorize)
	}

	fmt.Fprintln(out)
	writeSectionHeader(out, "Dependencies", colorize)
	for _, dep := range depStatuses {
		writeStatusLine(out, dep.Name, dependencyKind(dep), dependencyDetail(dep), colorize)
	}

	fmt.Fprintln(out)
	writeSectionHeader(out, "Queue", colorize)
	rows := queueStatRows(stats)
	if len(rows) == 0 {
		fmt.Fprintf(out, "%sempty\n", statusIndent)
	} else {
		renderTable(out, []string{"Status", "Count"}, rows,
			[]columnAlignment{{Number: 2, Align: text.AlignRight}})
	}

	fmt.Fprintln(out)
	writeSectionHeader(out, "Latest Batch", colorize)
	if latest == nil {
		fmt.Fprintf(out, "%snone\n", statusIndent)
	} else {
		writeStatusLine(out, "Batch", statusInfo,
			fmt.Sprintf("%s (%s)", shortID(latest.ID), latest.Status), colorize)
		writeStatusLine(out, "Engine", statusInfo, latest.Engine, colorize)
		writeStatusLine(out, "Format", statusInfo, latest.TargetFormat, colorize)
		if detail := batchItemsDetail(batchStats); detail != "" {
			writeStatusLine(out, "Items", statusInfo, detail, colorize)
		}
		if latest.CompletedAt != nil {
			writeStatusLine(out, "Completed", statusInfo, formatTimestamp(*latest.CompletedAt), colorize)
		}
		for _, subject := range subjects {
			writeStatusLine(out, "Converting", statusInfo, subject, colorize)
		}
	}
	return nil
}

func dependencyKind(dep deps.Status) statusKind {
	switch {
	case dep.Available:
		return statusOK
	case dep.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyDetail(dep deps.Status) string {
	if dep.Available {
		return dep.Command
	}
	detail := dep.Detail
	if detail == "" {
		detail = "not found"
	}
	if dep.Optional {
		detail += " (optional)"
	}
	return detail
}

// batchItemsDetail summarizes one batch's item counts, e.g. "3 completed, 1 failed".
func batchItemsDetail(stats map[queue.Status]int) string {
	order := []queue.Status{
		queue.StatusCompleted,
		queue.StatusFailed,
		queue.StatusCancelled,
		queue.StatusConverting,
		queue.StatusPending,
	}
	parts := make([]string, 0, len(order))
	for _, status := range order {
		if count := stats[status]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, status))
		}
	}
	return strings.Join(parts, ", ")
}

func queueStatRows(stats map[queue.Status]int) [][]string {
	order := []queue.Status{
		queue.StatusPending,
		queue.StatusConverting,
		queue.StatusCompleted,
		queue.StatusFailed,
		queue.StatusCancelled,
	}
	rows := make([][]string, 0, len(order))
	for _, status := range order {
		count := stats[status]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	return rows
}
