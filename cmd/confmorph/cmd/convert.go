package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtillman/confmorph/internal/ops"
	"github.com/dtillman/confmorph/internal/output"
	"github.com/dtillman/confmorph/internal/value"
)

var (
	convertCfg      string
	convertOutType  string
	convertFlatten  bool
	convertContext  string
	convertTemplate string
	convertKeys     []string
	convertValidate string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a config file between formats",
	Long: `Loads a config file (or literal string), optionally restructures it
against a template config, filters its top-level keys, or flattens it,
then prints it in the requested output format.

With --validate-cfg the config is checked against a validation template
instead: every entry whose type disagrees is printed as INVALID ENTRY,
followed by SUCCESS or FAILURE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(convertCfg, convertContext)
		if err != nil {
			return err
		}

		if convertValidate != "" {
			return runValidate(cfg)
		}

		m, err := requireMapping(cfg, convertCfg)
		if err != nil {
			return err
		}

		if convertTemplate != "" {
			tmplVal, err := loadConfig(convertTemplate, "")
			if err != nil {
				return err
			}
			tmpl, err := requireMapping(tmplVal, convertTemplate)
			if err != nil {
				return err
			}
			m = ops.Structure(ops.Flatten(m, nil), tmpl)
		}

		if len(convertKeys) > 0 {
			m, err = ops.Filter(m, convertKeys)
			if err != nil {
				return err
			}
		}

		if convertFlatten {
			m = ops.Flatten(m, nil)
		}

		outType := convertOutType
		if outType == "" {
			outType = "yaml"
		}
		detail("rendering as %s", outType)
		out, err := serializeAs(value.Map(m), outType)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// runValidate checks the loaded config against the validation template
// and prints the cfg_main-compatible report.
func runValidate(cfg *value.Value) error {
	m, err := requireMapping(cfg, convertCfg)
	if err != nil {
		return err
	}
	tmplVal, err := loadConfig(convertValidate, "")
	if err != nil {
		return err
	}
	tmpl, err := requireMapping(tmplVal, convertValidate)
	if err != nil {
		return err
	}

	scheme := output.SchemeFor(noColor)
	invalid := ops.Validate(m, tmpl)
	if invalid.Len() == 0 {
		fmt.Println(scheme.Success.Sprint("SUCCESS"))
		return nil
	}
	for _, k := range invalid.Keys() {
		v, _ := invalid.Get(k)
		fmt.Printf("%s: %s=%s\n", scheme.Warn.Sprint("INVALID ENTRY"), k, entryText(v))
	}
	fmt.Println(scheme.Failure.Sprint("FAILURE"))
	return fmt.Errorf("validation failed: %d invalid entries", invalid.Len())
}

// entryText renders one invalid entry's value for the report: scalars
// and flat lists as their line text, containers in their spelled form
// so the report shows what was actually there.
func entryText(v *value.Value) string {
	if v.Kind() == value.KindMapping || v.Kind() == value.KindList {
		return v.GoString()
	}
	return v.Text()
}

func init() {
	convertCmd.Flags().StringVarP(&convertCfg, "cfg", "c", "", "config file to parse")
	convertCmd.Flags().StringVarP(&convertOutType, "output-type", "o", "", "output format: shell, yaml, ini, json, xml, or toml")
	convertCmd.Flags().BoolVarP(&convertFlatten, "flatten", "f", false, "flatten resulting config")
	convertCmd.Flags().StringVarP(&convertContext, "context", "x", "", "context config used to render a templated file")
	convertCmd.Flags().StringVarP(&convertTemplate, "template-cfg", "t", "", "template config used to structure the config")
	convertCmd.Flags().StringSliceVarP(&convertKeys, "keys", "k", nil, "only process top-level keys matching these regexes")
	convertCmd.Flags().StringVarP(&convertValidate, "validate-cfg", "v", "", "validation config to check the config against")
	_ = convertCmd.MarkFlagRequired("cfg")

	rootCmd.AddCommand(convertCmd)
}
