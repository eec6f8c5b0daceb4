package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/ingest"
	"github.com/fluent-ops/flu3nt/internal/model"
)

var (
	detectSheet       string
	detectFormat      string
	detectConcurrency int
	detectSaveNPI     bool
)

// detectReport is the per-file output of the detect command.
type detectReport struct {
	UploadID    string                  `json:"uploadId"`
	File        string                  `json:"file"`
	Columns     []model.Column          `json:"columns"`
	Suggestions []classify.Suggestion   `json:"suggestions"`
	NPIRanking  []classify.NPICandidate `json:"npiRanking"`
}

var detectCmd = &cobra.Command{
	Use:   "detect <file> [file...]",
	Short: "Detect template fields in scope-sheet columns",
	Long: `Reads one or more scope sheets (CSV, TSV or XLSX), samples each column,
and runs every field classifier: stored knowledge first, header/value
heuristics second. Prints the suggested mappings and the full NPI ranking.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		detector := newDetector(st)

		reports := make([]detectReport, len(args))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(detectConcurrency)
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				var (
					header []string
					rows   [][]string
					err    error
				)
				if detectSheet != "" {
					header, rows, err = ingest.ReadXLSX(path, ingest.XLSXOptions{SheetName: detectSheet})
				} else {
					header, rows, err = ingest.ReadFile(path)
				}
				if err != nil {
					return eris.Wrapf(err, "detect: read %s", path)
				}

				columns := ingest.BuildColumns(header, rows)
				report := detectReport{
					UploadID:    uuid.New().String(),
					File:        path,
					Columns:     columns,
					Suggestions: detector.DetectAll(columns),
					NPIRanking:  detector.DetectNPIRanked(columns),
				}

				mu.Lock()
				reports[i] = report
				mu.Unlock()

				zap.L().Info("detect: file classified",
					zap.String("file", path),
					zap.Int("columns", len(columns)),
					zap.Int("suggestions", len(report.Suggestions)),
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if detectSaveNPI {
			for _, r := range reports {
				if len(r.NPIRanking) > 0 && r.NPIRanking[0].IsNPIColumn {
					top := r.NPIRanking[0]
					st.AddNPIColumn(ctx, top.Name, int(top.Confidence))
				}
			}
		}

		return printReports(reports)
	},
}

func printReports(reports []detectReport) error {
	if detectFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		fmt.Printf("%s (%d columns)\n", r.File, len(r.Columns))
		for _, s := range r.Suggestions {
			fmt.Printf("  %-24s -> %-30s %5.1f  (%s)\n",
				s.Field.Label(), s.ColumnName, s.Confidence, s.Source)
		}
		if len(r.NPIRanking) > 0 {
			fmt.Println("  NPI ranking:")
			for _, c := range r.NPIRanking {
				flag := " "
				if c.IsNPIColumn {
					flag = "*"
				}
				fmt.Printf("   %s %-30s %5.1f\n", flag, c.Name, c.Confidence)
			}
		}
		fmt.Println()
	}
	return nil
}

func init() {
	detectCmd.Flags().StringVar(&detectSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	detectCmd.Flags().StringVar(&detectFormat, "format", "table", "output format: table or json")
	detectCmd.Flags().IntVar(&detectConcurrency, "concurrency", 4, "max files classified in parallel")
	detectCmd.Flags().BoolVar(&detectSaveNPI, "save-npi", false, "record the top NPI candidate in the knowledge base")
	rootCmd.AddCommand(detectCmd)
}
