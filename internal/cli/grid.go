package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/segment"
)

// gridFlagKeys binds grid flags to their config keys.
var gridFlagKeys = map[string]string{
	"window-len": config.KeyGridWindowLen,
	"min-len":    config.KeyGridMinLen,
	"overlap":    config.KeyGridOverlap,
}

// GridCmd creates the grid command.
// The env parameter provides injectable dependencies for testing.
func GridCmd(env *Env) *cobra.Command {
	var opts outputOptions
	defaults := config.Default().Grid

	cmd := &cobra.Command{
		Use:   "grid <audio-file>",
		Short: "Split a recording into fixed-length windows",
		Long: `Split a recording into fixed-length windows, ignoring its content.

Each segment's text is a label such as "[2] 4.0s-8.0s". No window starts
once fewer than --min-len seconds remain.`,
		Example: `  dictation grid lesson.mp3
  dictation grid lesson.mp3 --window-len 6 --overlap 1 -o lesson.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().Float64("window-len", defaults.WindowLen, "Window length in seconds")
	cmd.Flags().Float64("min-len", defaults.MinLen, "Shortest window kept, in seconds")
	cmd.Flags().Float64("overlap", defaults.Overlap, "Seconds shared by consecutive windows")
	addOutputFlags(cmd, &opts)

	return cmd
}

// runGrid executes the fixed-interval pipeline.
// Validation order: file exists -> config -> output -> ffmpeg
func runGrid(cmd *cobra.Command, env *Env, inputPath string, opts outputOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if err := checkInput(inputPath); err != nil {
		return err
	}
	cfg, err := loadConfig(env, cmd, gridFlagKeys)
	if err != nil {
		return err
	}
	output, err := resolveOutput(opts.output, cfg.OutputDir)
	if err != nil {
		return err
	}

	// === SETUP ===

	ffmpegPath, err := resolveFFmpeg(ctx, env)
	if err != nil {
		return err
	}
	probe, err := env.ProbeFactory.NewProbe(ffmpegPath, env.Logger)
	if err != nil {
		return err
	}

	// === SEGMENTATION ===

	_, _ = fmt.Fprintln(env.Stderr, "Probing duration...")
	total, err := probe.Probe(ctx, inputPath)
	if err != nil {
		return err
	}
	printDuration(env.Stderr, total)

	windows, err := segment.GenerateGrid(total, cfg.Grid.WindowLen, cfg.Grid.MinLen, cfg.Grid.Overlap)
	if err != nil {
		return err
	}
	windows = segment.Resolvable(windows)
	_, _ = fmt.Fprintf(env.Stderr, "Generated %d segments (%ss windows)\n",
		len(windows), segment.Seconds(cfg.Grid.WindowLen))
	env.Logger.Debug("grid generated",
		zap.Float64("total", total),
		zap.Int("windows", len(windows)))

	records := segment.Assemble(windows, segment.GridText)
	e := draft.New(draftTitle(cfg.Title, inputPath), filepath.Base(inputPath), total, records)

	return saveDraft(env, output, e, opts.preview)
}
