// Command countries fetches country records, maps them onto typed values with
// stencil and prints them back out in the configured format.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "countries",
	Short: "Map country records with stencil",
	Long: `countries fetches country records from a REST Countries compatible API,
or reads them from a file, maps them onto typed Country values and prints
the collected result.

Settings come from defaults, an optional YAML file (--config) and
STENCIL_* environment variables, in increasing order of precedence.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "countries.yaml", "path to an optional YAML config file")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(convertCmd)
}
