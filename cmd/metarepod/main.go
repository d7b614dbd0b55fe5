// Command metarepod runs the metadata repository server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfigFile string

var rootCmd = &cobra.Command{
	Use:   "metarepod",
	Short: "metarepod serves a federated metadata collection",
	Long: `metarepod hosts a local metadata collection and exposes its type
definitions, entities, relationships, and reference copies over HTTP.
It can join metadata cohorts and archive instance graphs to local or
object storage.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("metarepod", version)
	},
}

const version = "v0.1.0"

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: metarepo.yaml in ., /etc/metarepo, or ~/.metarepo)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
