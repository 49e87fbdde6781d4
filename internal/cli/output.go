package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/format"
	"github.com/alnah/go-dictation/internal/segment"
)

// defaultPreview is how many segments are echoed after a run.
const defaultPreview = 5

// previewTextWidth caps each previewed text in runes.
const previewTextWidth = 60

// outputOptions are the flags shared by every draft-generating command.
type outputOptions struct {
	output  string
	preview int
}

// addOutputFlags registers -o, --title and --preview on cmd.
// --title is bound to the config key, so it is read back through the store.
func addOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Draft file path (default: "+draft.DefaultFileName+" in output_dir)")
	cmd.Flags().String("title", "", "Draft title (default: config title, else the audio file name)")
	cmd.Flags().IntVar(&opts.preview, "preview", defaultPreview, "Number of segments to echo after the run")
}

// checkInput verifies the input file exists and is not a directory.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}

// loadConfig opens the settings store, binds the command's flags, and
// returns the resolved, validated configuration.
func loadConfig(env *Env, cmd *cobra.Command, keysByFlag map[string]string) (config.Config, error) {
	store, err := env.ConfigLoader.Load(env.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	bindings := map[string]string{"title": config.KeyTitle}
	for f, k := range keysByFlag {
		bindings[f] = k
	}
	if err := store.BindFlags(cmd.Flags(), bindings); err != nil {
		return config.Config{}, err
	}
	return store.Config()
}

// resolveOutput applies output_dir and checks the target directory exists.
func resolveOutput(output, outputDir string) (string, error) {
	path := config.ResolveOutputPath(output, outputDir, draft.DefaultFileName)
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrOutputDirMissing, dir)
	}
	return path, nil
}

// resolveFFmpeg finds ffmpeg and logs a warning for old versions.
func resolveFFmpeg(ctx context.Context, env *Env) (string, error) {
	path, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	env.FFmpegResolver.CheckVersion(ctx, path, env.Logger)
	return path, nil
}

// draftTitle falls back to the audio file name without extension.
func draftTitle(configured, audioPath string) string {
	if t := strings.TrimSpace(configured); t != "" {
		return t
	}
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// printPreview echoes the first n records, then the total when some are hidden.
func printPreview(w io.Writer, records []segment.Record, n int) {
	if n <= 0 || len(records) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\nPreview:")
	for _, r := range records[:min(n, len(records))] {
		_, _ = fmt.Fprintf(w, "  %d: %ss - %ss (%ss)  %s\n",
			r.ID, r.Start, r.End, r.Duration, format.Truncate(r.Text, previewTextWidth))
	}
	if len(records) > n {
		_, _ = fmt.Fprintf(w, "  ... (%d segments total)\n", len(records))
	}
}

// saveDraft previews the records, writes the draft, and prints next steps.
func saveDraft(env *Env, path string, e *draft.Envelope, preview int) error {
	printPreview(env.Stderr, e.Segments, preview)

	if err := draft.WriteFile(path, e); err != nil {
		return err
	}
	env.Logger.Debug("draft written",
		zap.String("path", path),
		zap.Int("segments", len(e.Segments)))

	_, _ = fmt.Fprintf(env.Stderr, "\nSaved: %s\n", path)
	_, _ = fmt.Fprintln(env.Stderr, "\nNext steps:")
	_, _ = fmt.Fprintf(env.Stderr, "  1. Edit %s and fill in each segment's text\n", path)
	_, _ = fmt.Fprintln(env.Stderr, "  2. Fine-tune the start and end timestamps")
	_, _ = fmt.Fprintf(env.Stderr, "  3. Run: dictation sentences %s\n", path)
	return nil
}

// warnNoSpeech reports an empty result; nothing is written.
func warnNoSpeech(env *Env, hint string) {
	_, _ = fmt.Fprintf(env.Stderr, "Warning: no speech segments detected, adjust thresholds (%s)\n", hint)
	env.Logger.Warn("no speech segments detected")
}

// printDuration reports the probed length in both clock and seconds form.
func printDuration(w io.Writer, seconds float64) {
	_, _ = fmt.Fprintf(w, "Duration: %s (%ss)\n", format.Duration(seconds), segment.Seconds(segment.Round1(seconds)))
}
