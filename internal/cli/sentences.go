package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/template"
)

// sentencesOptions holds the sentences command flags.
type sentencesOptions struct {
	format      string
	placeholder bool
	output      string
}

// SentencesCmd creates the sentences command.
// The env parameter provides injectable dependencies for testing.
func SentencesCmd(env *Env) *cobra.Command {
	var opts sentencesOptions

	cmd := &cobra.Command{
		Use:   "sentences <draft.json>",
		Short: "Render a draft as a sampleSentences literal",
		Long: `Render the segments of a draft as a sampleSentences array literal
to paste into the dictation page.

Formats:
  tsx        the bare literal
  js-draft   the literal under an "Auto-generated from" header

--placeholder replaces each text with "[Text N - Ss-Es]".`,
		Example: `  dictation sentences draft_config.json
  dictation sentences draft_config.json --format js-draft -o sampleSentences_draft.js
  dictation sentences draft_config.json --placeholder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSentences(env, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", template.TSX,
		"Snippet format: "+strings.Join(template.Names(), ", "))
	cmd.Flags().BoolVar(&opts.placeholder, "placeholder", false, "Replace texts with fill-in markers")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

// runSentences renders a draft.
// Validation order: draft exists -> format -> draft content -> output
func runSentences(env *Env, draftPath string, opts sentencesOptions) error {
	if err := checkInput(draftPath); err != nil {
		return err
	}
	name, err := template.ParseName(opts.format)
	if err != nil {
		return err
	}
	e, err := draft.Read(draftPath)
	if err != nil {
		return err
	}

	renderOpts := []template.Option{
		template.WithSource(filepath.Base(draftPath)),
		template.WithTitle(e.Title),
	}
	if opts.placeholder {
		renderOpts = append(renderOpts, template.WithPlaceholder())
	}

	if opts.output == "" {
		return template.Render(env.Stdout, name, e.Segments, renderOpts...)
	}

	output, err := resolveOutput(opts.output, "")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := template.Render(&buf, name, e.Segments, renderOpts...); err != nil {
		return err
	}
	if err := draft.WriteAtomic(output, buf.Bytes()); err != nil {
		return fmt.Errorf("write snippet %s: %w", output, err)
	}
	_, _ = fmt.Fprintf(env.Stderr, "Saved: %s (%d sentences)\n", output, len(e.Segments))
	return nil
}
