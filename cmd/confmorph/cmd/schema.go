package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dtillman/confmorph/internal/output"
	"github.com/dtillman/confmorph/internal/schema"
)

var (
	schemaCfg  string
	schemaFile string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Validate a config file against a JSON Schema",
	Long: `Loads a config file in any supported format and validates it against a
JSON Schema document. Every violation is reported with its location.
Exit 0 when the config conforms; non-zero otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(schemaCfg, "")
		if err != nil {
			return err
		}
		schemaText, err := os.ReadFile(schemaFile)
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", schemaFile, err)
		}

		res, err := schema.Validate(cfg, string(schemaText))
		if err != nil {
			return err
		}

		scheme := output.SchemeFor(noColor)
		if res.Valid {
			info("%s %s conforms to %s", scheme.Success.Sprint("ok"), schemaCfg, schemaFile)
			return nil
		}
		for _, p := range res.Problems {
			info("%s %s", scheme.Failure.Sprint("violation"), p)
		}
		return fmt.Errorf("schema validation failed: %d violations", len(res.Problems))
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaCfg, "cfg", "c", "", "config file to validate")
	schemaCmd.Flags().StringVar(&schemaFile, "schema", "", "JSON Schema file")
	_ = schemaCmd.MarkFlagRequired("cfg")
	_ = schemaCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(schemaCmd)
}
