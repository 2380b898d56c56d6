package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtillman/confmorph/internal/query"
)

var (
	getCfg     string
	getContext string
)

var getCmd = &cobra.Command{
	Use:   "get <path> [path...]",
	Short: "Print values from a config file",
	Long: `Loads a config file and answers dotted path queries against it, for
example "task.host" or "servers.0.name". Mappings and lists print as
JSON; scalars print bare. With several paths, each result is printed
as "path: value".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(getCfg, getContext)
		if err != nil {
			return err
		}
		doc, err := serializeAs(cfg, "json")
		if err != nil {
			return err
		}

		if len(args) == 1 {
			v, err := query.Extract(doc, args[0])
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		}

		paths := make(map[string]string, len(args))
		for _, p := range args {
			paths[p] = p
		}
		results, err := query.ExtractAll(doc, paths)
		if err != nil {
			return err
		}
		for _, p := range args {
			fmt.Printf("%s: %s\n", p, results[p])
		}
		return nil
	},
}

func init() {
	getCmd.Flags().StringVarP(&getCfg, "cfg", "c", "", "config file to parse")
	getCmd.Flags().StringVarP(&getContext, "context", "x", "", "context config used to render a templated file")
	_ = getCmd.MarkFlagRequired("cfg")

	rootCmd.AddCommand(getCmd)
}
