package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/model"
)

var (
	knowledgeColumn string
	knowledgeField  string
	knowledgeYes    bool
	knowledgeFormat string
	knowledgeOut    string
	knowledgeFile   string
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect and maintain the column-mapping knowledge base",
}

var knowledgeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge-base counters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		stats := st.GetStats(cmd.Context())
		fmt.Printf("NPI columns:      %d\n", stats.TotalNPIColumns)
		fmt.Printf("Total detections: %d\n", stats.TotalDetections)
		if stats.LastUpdated != nil {
			fmt.Printf("Last updated:     %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05 MST"))
		}
		if len(stats.TopNPIColumns) > 0 {
			fmt.Println("Most-detected NPI columns:")
			for _, e := range stats.TopNPIColumns {
				fmt.Printf("  %-30s seen %d, confidence %d\n", e.Name, e.DetectionCount, e.Confidence)
			}
		}
		return nil
	},
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored column by field bucket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		all := st.AllColumns(cmd.Context())
		for _, ft := range model.AllFieldTypes() {
			entries := all[ft.Bucket()]
			if len(entries) == 0 {
				continue
			}
			fmt.Printf("%s:\n", ft.Bucket())
			for _, e := range entries {
				fmt.Printf("  %-30s confidence %3d, seen %d\n", e.Name, e.Confidence, e.DetectionCount)
			}
		}
		return nil
	},
}

var knowledgeSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Fold the current session mappings into the knowledge base",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		saved := st.SaveMappingsToKnowledge(cmd.Context())
		fmt.Printf("%d columns saved to knowledge base\n", saved)
		return nil
	},
}

var knowledgeRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove one stored column from a field bucket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ft := model.FieldType(knowledgeField)
		if !ft.Valid() {
			return eris.Errorf("unknown field type %q", knowledgeField)
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if !st.RemoveColumn(cmd.Context(), knowledgeColumn, ft) {
			return eris.Errorf("no stored column %q in bucket %s", knowledgeColumn, ft.Bucket())
		}
		fmt.Printf("removed %s from %s\n", knowledgeColumn, ft.Bucket())
		return nil
	},
}

var knowledgeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the entire knowledge base (irreversible)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !knowledgeYes {
			return eris.New("refusing to clear without --yes")
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(cmd.Context()); err != nil {
			return err
		}
		zap.L().Info("knowledge base cleared")
		fmt.Println("knowledge base cleared")
		return nil
	},
}

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base as JSON or YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		out := os.Stdout
		if knowledgeOut != "" {
			f, err := os.Create(knowledgeOut)
			if err != nil {
				return eris.Wrap(err, "knowledge export: create file")
			}
			defer f.Close()
			out = f
		}
		return st.Export(cmd.Context(), out, knowledgeFormat)
	},
}

var knowledgeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the knowledge base with a previously exported document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := os.Open(knowledgeFile)
		if err != nil {
			return eris.Wrap(err, "knowledge import: open file")
		}
		defer f.Close()

		if err := st.Import(cmd.Context(), f, knowledgeFormat); err != nil {
			return err
		}
		fmt.Println("knowledge base imported")
		return nil
	},
}

func init() {
	knowledgeRemoveCmd.Flags().StringVar(&knowledgeColumn, "column", "", "stored column name (required)")
	knowledgeRemoveCmd.Flags().StringVar(&knowledgeField, "field", "", "field type (required)")
	_ = knowledgeRemoveCmd.MarkFlagRequired("column")
	_ = knowledgeRemoveCmd.MarkFlagRequired("field")

	knowledgeClearCmd.Flags().BoolVar(&knowledgeYes, "yes", false, "confirm the irreversible clear")

	knowledgeExportCmd.Flags().StringVar(&knowledgeFormat, "format", "json", "export format: json or yaml")
	knowledgeExportCmd.Flags().StringVar(&knowledgeOut, "out", "", "output file (default: stdout)")

	knowledgeImportCmd.Flags().StringVar(&knowledgeFile, "file", "", "document to import (required)")
	knowledgeImportCmd.Flags().StringVar(&knowledgeFormat, "format", "json", "import format: json or yaml")
	_ = knowledgeImportCmd.MarkFlagRequired("file")

	knowledgeCmd.AddCommand(knowledgeStatsCmd, knowledgeListCmd, knowledgeSaveCmd,
		knowledgeRemoveCmd, knowledgeClearCmd, knowledgeExportCmd, knowledgeImportCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
