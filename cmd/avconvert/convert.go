package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"avconverter/internal/catalog"
	"avconverter/internal/config"
	"avconverter/internal/daemon"
	"avconverter/internal/engine"
	"avconverter/internal/history"
	"avconverter/internal/logging"
	"avconverter/internal/media"
	"avconverter/internal/orchestrator"
	"avconverter/internal/queue"
)

type convertFlags struct {
	format       string
	engineName   string
	outputDir    string
	workers      int
	audioBitrate string
	sampleRate   int
	channels     int
	resolution   string
	videoBitrate string
	title        string
	artist       string
	album        string
	coverArt     string
	jsonOut      bool
}

func newConvertCommand(cmdCtx *commandContext) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [file|directory...]",
		Short: "Convert media files to a target format",
		Long: `Convert audio and video files to the target format.

Arguments may be files or directories; a directory contributes every
recognized media file directly inside it. Outputs land in --output-dir
when set, otherwise next to each source file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, cmdCtx, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Target format (defaults to conversion.format)")
	cmd.Flags().StringVarP(&flags.engineName, "engine", "e", "", "Conversion engine: native, shell, or cloud")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for converted files")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Concurrent conversions (defaults to conversion.workers)")
	cmd.Flags().StringVar(&flags.audioBitrate, "bitrate", "", "Audio bitrate, e.g. 192k")
	cmd.Flags().IntVar(&flags.sampleRate, "sample-rate", 0, "Audio sample rate in Hz")
	cmd.Flags().IntVar(&flags.channels, "channels", 0, "Audio channel count")
	cmd.Flags().StringVar(&flags.resolution, "resolution", "", "Video resolution as WxH, e.g. 1280x720")
	cmd.Flags().StringVar(&flags.videoBitrate, "video-bitrate", "", "Video bitrate, e.g. 2500k")
	cmd.Flags().StringVar(&flags.title, "title", "", "Title tag for the outputs")
	cmd.Flags().StringVar(&flags.artist, "artist", "", "Artist tag for the outputs")
	cmd.Flags().StringVar(&flags.album, "album", "", "Album tag for the outputs")
	cmd.Flags().StringVar(&flags.coverArt, "cover-art", "", "Image file to embed as cover art")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Emit the batch report as JSON")

	return cmd
}

func runConvert(cmd *cobra.Command, cmdCtx *commandContext, flags *convertFlags, args []string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}

	engineName := flags.engineName
	if engineName == "" {
		engineName = cfg.Conversion.Engine
	}
	engineType, ok := engine.ParseType(engineName)
	if !ok {
		return fmt.Errorf("unknown engine %q (choose native, shell, or cloud)", engineName)
	}

	format := flags.format
	if format == "" {
		format = cfg.Conversion.Format
	}
	if !catalog.IsValidFormat(format) {
		return fmt.Errorf("unsupported format %q, run 'avconvert formats' for the supported set", format)
	}

	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	} else {
		if outputDir, err = config.ExpandPath(outputDir); err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
	}

	coverArt := flags.coverArt
	if coverArt != "" {
		if coverArt, err = config.ExpandPath(coverArt); err != nil {
			return fmt.Errorf("resolve cover art: %w", err)
		}
		if _, err := os.Stat(coverArt); err != nil {
			return fmt.Errorf("cover art: %w", err)
		}
	}

	opts := media.Options{
		TargetFormat: format,
		AudioBitrate: flags.audioBitrate,
		SampleRate:   flags.sampleRate,
		Channels:     flags.channels,
		Resolution:   flags.resolution,
		VideoBitrate: flags.videoBitrate,
		Title:        flags.title,
		Artist:       flags.artist,
		Album:        flags.album,
		CoverArt:     coverArt,
	}.Normalized()
	if err := opts.Validate(); err != nil {
		return err
	}

	inputs, err := expandInputPaths(args)
	if err != nil {
		return err
	}

	interactive := shouldColorize(cmd.OutOrStdout()) && !flags.jsonOut
	logger, err := newConvertLogger(cfg, interactive || flags.jsonOut)
	if err != nil {
		return err
	}

	lock := daemon.NewInstanceLock(cfg)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if closed, err := store.CloseInterrupted(cmd.Context()); err != nil {
		return fmt.Errorf("close interrupted items: %w", err)
	} else if closed > 0 {
		logger.Info("closed items left by an interrupted run", logging.Int64("items", closed))
	}

	hist := history.NewStore(cfg.History.Path, cfg.History.Limit)

	orch, err := orchestrator.New(cfg, store, hist, logger, orchestrator.WithWorkers(flags.workers))
	if err != nil {
		return err
	}

	printer := newBatchPrinter(cmd.OutOrStdout(), interactive)
	var reports []convertItemReport

	req := orchestrator.BatchRequest{
		Paths:     inputs,
		Engine:    engineType,
		Options:   opts,
		OutputDir: outputDir,
		OnEvent: func(ev orchestrator.ItemEvent) {
			if flags.jsonOut {
				reports = append(reports, itemReportFromEvent(ev))
				return
			}
			printer.event(ev)
		},
	}
	if interactive {
		req.OnProgress = printer.progress
	}

	summary, err := orch.RunBatch(cmd.Context(), req)
	if err != nil {
		return err
	}

	if flags.jsonOut {
		report := convertReport{
			BatchID:   summary.BatchID,
			Engine:    string(engineType),
			Format:    opts.TargetFormat,
			Total:     summary.Total,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
			Cancelled: summary.Cancelled,
			Duration:  formatElapsed(summary.Duration),
			Items:     reports,
		}
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printer.finish(*summary)
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if summary.DoneWithErrors() {
		return fmt.Errorf("%d of %d conversions failed", summary.Failed, summary.Total)
	}
	return nil
}

// newConvertLogger tees console output with the rolling batch log file.
// quietConsole raises the console floor to WARN so progress rendering and
// JSON output stay readable; the file side always records at the
// configured level.
func newConvertLogger(cfg *config.Config, quietConsole bool) (*slog.Logger, error) {
	console, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	if quietConsole {
		console = logging.WithLevelOverride(console, slog.LevelWarn)
	}
	if cfg.Paths.LogDir == "" {
		return console, nil
	}
	fileHandler, err := logging.NewJSONFileHandler(filepath.Join(cfg.Paths.LogDir, logging.LogFileName), cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.TeeLogger(console, fileHandler), nil
}

type convertItemReport struct {
	ItemID   int64  `json:"itemId"`
	Source   string `json:"source"`
	Status   string `json:"status"`
	Engine   string `json:"engine,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

type convertReport struct {
	BatchID   string              `json:"batchId"`
	Engine    string              `json:"engine"`
	Format    string              `json:"format"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Cancelled int                 `json:"cancelled"`
	Duration  string              `json:"duration"`
	Items     []convertItemReport `json:"items"`
}

func itemReportFromEvent(ev orchestrator.ItemEvent) convertItemReport {
	report := convertItemReport{
		ItemID:   ev.ItemID,
		Source:   ev.Path,
		Status:   string(ev.Status),
		Engine:   ev.Engine,
		Fallback: ev.FallbackUsed,
		Output:   ev.OutputPath,
	}
	if ev.Err != nil {
		report.Error = ev.Err.Error()
	}
	return report
}

// batchPrinter renders per-item outcomes. In interactive mode it keeps a
// single rewritable progress line below the completed entries.
type batchPrinter struct {
	out         io.Writer
	interactive bool
	lineActive  bool
}

func newBatchPrinter(out io.Writer, interactive bool) *batchPrinter {
	return &batchPrinter{out: out, interactive: interactive}
}

func (p *batchPrinter) progress(pr orchestrator.ItemProgress) {
	if !p.interactive {
		return
	}
	stage := strings.ToLower(pr.Stage)
	if stage == "" {
		stage = "converting"
	}
	fmt.Fprintf(p.out, "\r\x1b[2K  %s: %s %3.0f%%", filepath.Base(pr.Path), stage, pr.Percent)
	p.lineActive = true
}

func (p *batchPrinter) clearLine() {
	if p.lineActive {
		fmt.Fprint(p.out, "\r\x1b[2K")
		p.lineActive = false
	}
}

func (p *batchPrinter) event(ev orchestrator.ItemEvent) {
	p.clearLine()
	name := filepath.Base(ev.Path)
	switch ev.Status {
	case queue.StatusCompleted:
		suffix := ""
		if ev.FallbackUsed {
			suffix = " (shell fallback)"
		}
		fmt.Fprintf(p.out, "Converted %s -> %s%s\n", name, ev.OutputPath, suffix)
	case queue.StatusCancelled:
		fmt.Fprintf(p.out, "Cancelled %s\n", name)
	default:
		fmt.Fprintf(p.out, "Failed %s: %v\n", name, ev.Err)
	}
}

func (p *batchPrinter) finish(summary orchestrator.Summary) {
	p.clearLine()
	fmt.Fprintf(p.out, "\nBatch %s: %d converted, %d failed, %d cancelled in %s\n",
		shortID(summary.BatchID), summary.Succeeded, summary.Failed, summary.Cancelled,
		formatElapsed(summary.Duration))
}
