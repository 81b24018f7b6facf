package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mtkbits/dasplit/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "dasplit",
	Short: "dasplit takes MediaTek download agent files apart",
	Long: `Parses MediaTek DA files (legacy, XFlash and XML agents) and splits out the
DA1 and DA2 stages and their signatures for every supported SoC.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseLog {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

var (
	verboseLog bool
	configPath string
)

func setupCommands() {
	extractCmd.Flags().StringVarP(&extractDir, "out", "o", "", "Directory to extract to (default: current working directory)")
	extractCmd.Flags().StringVarP(&extractHWCodes, "hwcodes", "w", "", "Comma separated hw codes to extract, decimal or 0x-prefixed hex (default: all)")
	extractCmd.Flags().BoolVarP(&extractManifest, "manifest", "m", false, "Also write a manifest.plist describing the extracted files")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// -v belongs to glog.
	rootCmd.PersistentFlags().BoolVar(&verboseLog, "verbose", false, "Enable verbose debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: "+config.DefaultPath()+")")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(infoCmd)
}

func main() {
	setupCommands()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}
