// Package commands implements the recordtree command line: serve, render
// and version.
package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/recordtree/internal/cli/ui"
	"github.com/conduit-lang/recordtree/internal/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	noColor    bool
}

func (g *globalOptions) load() (*config.Config, error) {
	return config.Load(g.configPath)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "recordtree",
		Short: "Render database records as XML, JSON and HTML documents",
		Long: color.CyanString(`recordtree - record rendering pipeline

recordtree turns table rows and their field metadata into a canonical
document tree and serves it as XML, JSON or HTML.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to recordtree.yaml")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newServeCommand(g))
	rootCmd.AddCommand(newRenderCommand(g))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		ui.WriteError(rootCmd.ErrOrStderr(), err, color.NoColor)
		return err
	}
	return nil
}
