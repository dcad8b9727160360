package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the cavern command tree and binds the global flags.
func NewRootCmd() *cobra.Command {
	var (
		configPath   string
		verbose      bool
		quiet        bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "cavern",
		Short: "Download game content from the command line",
		Long: `cavern keeps a local record of games ("caves") and downloads their
archives, resolving missing upload information and logging in on the way.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	ConfigPath = &configPath
	Verbose = &verbose
	Quiet = &quiet
	OutputFormat = &outputFormat

	cmd.AddCommand(
		NewDownloadCmd(),
		NewRunCmd(),
		NewTasksCmd(),
		NewCaveCmd(),
		NewLoginCmd(),
		NewLogoutCmd(),
		NewWhoamiCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return cmd
}
