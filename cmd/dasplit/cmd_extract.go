package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtkbits/dasplit/pkg/config"
	"github.com/mtkbits/dasplit/pkg/da"
	"github.com/mtkbits/dasplit/pkg/extract"
	"github.com/mtkbits/dasplit/pkg/source"
)

var (
	extractDir      string
	extractHWCodes  string
	extractManifest bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [DA file] [hw codes]",
	Short: "Extract DA1/DA2 stages from a DA file",
	Long: `Splits every entry of a DA file into da1_<hwcode>.bin and da2_<hwcode>.bin, plus
da1_<hwcode>.sig and da2_<hwcode>.sig for signed stages. hw codes can be limited
with a comma separated list, eg. 0x6765,0x766.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		list := cfg.HWCodes
		if cmd.Flags().Changed("hwcodes") {
			list = extractHWCodes
		}
		if len(args) == 2 {
			list = args[1]
		}
		want, err := da.ParseHWCodes(list)
		if err != nil {
			return fmt.Errorf("invalid hw code list: %w", err)
		}

		dir := cfg.OutDir
		if cmd.Flags().Changed("out") {
			dir = extractDir
		}
		if dir == "" {
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory: %w", err)
			}
		}

		manifest := cfg.Manifest
		if cmd.Flags().Changed("manifest") {
			manifest = extractManifest
		}

		src, err := source.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not read input: %w", err)
		}
		defer src.Close()

		b, err := da.Parse(src.Bytes())
		if err != nil {
			return fmt.Errorf("could not parse DA: %w", err)
		}
		slog.Debug("Parsed DA", "identifier", b.Identifier, "type", b.Type.String(), "entries", len(b.Entries))

		results, err := extract.Extract(b, want, &extract.Config{
			OutDir:   dir,
			Manifest: manifest,
		})
		if err != nil {
			return err
		}
		for _, res := range results {
			for _, a := range res.Artifacts {
				slog.Info("Wrote", "file", a.Name, "size", a.Size)
			}
			slog.Info("Extracted DA", "hwcode", fmt.Sprintf("%#x", res.HWCode))
		}
		if len(results) == 0 {
			slog.Warn("No entry matched", "wanted", want.String())
			return nil
		}

		slog.Info("DA stages extracted successfully.", "dir", dir)
		return nil
	},
}
