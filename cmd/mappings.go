package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fluent-ops/flu3nt/internal/model"
)

var (
	mappingColumn string
	mappingField  string
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage the current session's confirmed column mappings",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List confirmed mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		mappings := st.GetMappings(cmd.Context())
		if len(mappings) == 0 {
			fmt.Println("no mappings")
			return nil
		}
		for _, m := range mappings {
			fmt.Printf("%-30s", m.ColumnName)
			for i, ft := range m.DetectedAs {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(ft.Label())
			}
			fmt.Println()
		}
		return nil
	},
}

var mappingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Toggle a field type on a column mapping",
	Long: `Toggles the given field type on the given column: assigns it when absent,
removes it when already assigned. Assigning NPI fails when another column
already carries it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ft := model.FieldType(mappingField)
		if !ft.Valid() {
			return eris.Errorf("unknown field type %q", mappingField)
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		res := st.SaveMapping(cmd.Context(), mappingColumn, ft)
		if !res.Saved {
			fmt.Println(res.Conflict)
			os.Exit(1)
		}
		fmt.Printf("mapping updated: %s\n", mappingColumn)
		return nil
	},
}

var mappingsUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove a column's mapping entirely",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if !st.RemoveMapping(cmd.Context(), mappingColumn) {
			return eris.Errorf("no mapping for column %q", mappingColumn)
		}
		fmt.Printf("mapping removed: %s\n", mappingColumn)
		return nil
	},
}

var mappingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all session mappings (knowledge base is kept)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		st.ClearMappings(cmd.Context())
		fmt.Println("mappings cleared")
		return nil
	},
}

// conversionPayload is the opaque handoff document the conversion pipeline
// consumes: each confirmed column with its field types and their template
// header labels.
type conversionPayload struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Mappings    []conversionMapping `json:"mappings"`
}

type conversionMapping struct {
	ColumnName string            `json:"columnName"`
	DetectedAs []model.FieldType `json:"detectedAs"`
	Labels     []string          `json:"labels"`
}

var mappingsPayloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Emit the conversion handoff payload for the current mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		payload := buildPayload(st.GetMappings(cmd.Context()))
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

func buildPayload(mappings []model.Mapping) conversionPayload {
	out := conversionPayload{
		GeneratedAt: time.Now().UTC(),
		Mappings:    make([]conversionMapping, 0, len(mappings)),
	}
	for _, m := range mappings {
		cm := conversionMapping{
			ColumnName: m.ColumnName,
			DetectedAs: m.DetectedAs,
			Labels:     make([]string, 0, len(m.DetectedAs)),
		}
		for _, ft := range m.DetectedAs {
			cm.Labels = append(cm.Labels, ft.Label())
		}
		out.Mappings = append(out.Mappings, cm)
	}
	return out
}

func init() {
	for _, c := range []*cobra.Command{mappingsSetCmd, mappingsUnsetCmd} {
		c.Flags().StringVar(&mappingColumn, "column", "", "column name (required)")
		_ = c.MarkFlagRequired("column")
	}
	mappingsSetCmd.Flags().StringVar(&mappingField, "field", "", "field type, e.g. npi or firstName (required)")
	_ = mappingsSetCmd.MarkFlagRequired("field")

	mappingsCmd.AddCommand(mappingsListCmd, mappingsSetCmd, mappingsUnsetCmd, mappingsClearCmd, mappingsPayloadCmd)
	rootCmd.AddCommand(mappingsCmd)
}
