package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vizrec/adapters/ingest"
	"vizrec/app"
	"vizrec/domain/dataset"
	"vizrec/domain/viz"
	"vizrec/internal/config"
	"vizrec/internal/container"
)

// options shared by every subcommand
type options struct {
	configPath string
	format     string
	seed       int64
	maxRows    int
	progress   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "vizrec",
		Short: "Profile tabular files and recommend charts",
		Long: `vizrec ingests a CSV, TSV, JSON, NDJSON or XLSX file, infers field types,
profiles it and prints ranked chart recommendations or renderer-ready specifications.

Files are analyzed in memory; nothing is stored.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file (overrides VIZREC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "", "Input format: csv|tsv|json|ndjson|xlsx (default: from extension)")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "Sampling seed (default: from configuration)")
	rootCmd.PersistentFlags().IntVar(&opts.maxRows, "max-rows", 0, "Maximum rows kept in the sample (default: from configuration)")
	rootCmd.PersistentFlags().BoolVar(&opts.progress, "progress", false, "Report chunk progress on stderr")

	rootCmd.AddCommand(
		newIngestCmd(opts),
		newProfileCmd(opts),
		newRecommendCmd(opts),
		newSynthesizeCmd(opts),
		newReportCmd(opts),
	)
	return rootCmd
}

// loaded is a file imported into a throwaway in-memory service
type loaded struct {
	service *app.VisualizationService
	result  *app.ImportResult
}

func (o *options) load(cmd *cobra.Command, path string) (*loaded, error) {
	if o.configPath != "" {
		os.Setenv("VIZREC_CONFIG", o.configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Database.URL = ""
	if o.seed != 0 {
		cfg.Ingest.Seed = o.seed
	}
	if o.maxRows > 0 {
		cfg.Ingest.MaxRowsToKeep = o.maxRows
		if cfg.Ingest.MaxChunkCollect < o.maxRows {
			cfg.Ingest.MaxChunkCollect = o.maxRows
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := container.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	req := app.ImportRequest{
		Name:     filepath.Base(path),
		Origin:   dataset.OriginCLI,
		Filename: filepath.Base(path),
		Format:   o.format,
	}
	if o.progress {
		stderr := cmd.ErrOrStderr()
		req.OnChunk = func(p ingest.ChunkProgress) {
			fmt.Fprintf(stderr, "chunk %d: %d rows, %d kept, %d skipped\n", p.Chunk, p.RowsProcessed, p.Retained, p.SkippedRows)
		}
	}

	res, err := c.VisualizationService.Import(ctx, f, req)
	if err != nil {
		return nil, err
	}
	return &loaded{service: c.VisualizationService, result: res}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newIngestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a file and print its summary, inferred types and skipped rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			ds := l.result.Dataset
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"dataset":      ds.Summarize(),
				"format":       ds.Format,
				"fields":       ds.Values.FieldNames(),
				"inferences":   l.result.Inferences,
				"skipped_rows": ds.SkippedRows,
				"issues":       l.result.Issues,
			})
		},
	}
}

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [file]",
		Short: "Print the statistical profile of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			prof, err := l.service.Profile(cmd.Context(), l.result.Dataset.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prof)
		},
	}
}

func newRecommendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [file]",
		Short: "Print ranked chart recommendations for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			recs, err := l.service.Recommend(cmd.Context(), l.result.Dataset.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
}

func newSynthesizeCmd(opts *options) *cobra.Command {
	var rank int
	var recID string
	var mark string

	cmd := &cobra.Command{
		Use:   "synthesize [file]",
		Short: "Print a renderer-ready chart specification",
		Long: `Synthesize a chart specification from the file's recommendations.

By default the top-ranked recommendation is used. Pick another with --rank or --id,
or pass --mark to let the synthesizer complete an empty encoding for that mark.

Example: vizrec synthesize sales.csv --rank 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			id := l.result.Dataset.ID

			req := app.SynthesizeRequest{RecommendationID: recID}
			switch {
			case mark != "":
				req = app.SynthesizeRequest{Mark: viz.Mark{Type: viz.MarkType(strings.ToLower(mark))}, Encoding: viz.Encoding{}}
			case recID == "":
				recs, err := l.service.Recommend(cmd.Context(), id)
				if err != nil {
					return err
				}
				if rank < 1 || rank > len(recs) {
					return fmt.Errorf("rank %d out of range: %d recommendations", rank, len(recs))
				}
				req.RecommendationID = recs[rank-1].ID
			}

			spec, err := l.service.Synthesize(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), spec)
		},
	}

	cmd.Flags().IntVar(&rank, "rank", 1, "1-based rank of the recommendation to render")
	cmd.Flags().StringVar(&recID, "id", "", "Recommendation id to render")
	cmd.Flags().StringVar(&mark, "mark", "", "Mark type to synthesize directly (e.g. arc, wordcloud, parallel_coordinates)")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var reportFormat string
	var output string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render an HTML or Markdown analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			body, err := l.service.Report(cmd.Context(), l.result.Dataset.ID, app.ReportFormat(reportFormat))
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(output, body, 0o644)
		},
	}

	cmd.Flags().StringVar(&reportFormat, "report-format", "html", "Report format: html|markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
