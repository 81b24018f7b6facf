package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtkbits/dasplit/pkg/da"
	"github.com/mtkbits/dasplit/pkg/source"
)

var infoCmd = &cobra.Command{
	Use:   "info [DA file]",
	Short: "Show the entries of a DA file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not read input: %w", err)
		}
		defer src.Close()

		b, err := da.Parse(src.Bytes())
		if err != nil {
			return fmt.Errorf("could not parse DA: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Identifier: %s\n", b.Identifier)
		fmt.Fprintf(w, "   Version: %d\n", b.Version)
		fmt.Fprintf(w, "      Type: %s\n", b.Type)
		fmt.Fprintf(w, "   Entries: %d\n", len(b.Entries))
		for _, e := range b.Entries {
			fmt.Fprintf(w, "\n%s\n", e)
			if e.PageSize != 0 {
				fmt.Fprintf(w, "  page size: %#x\n", e.PageSize)
			}
			for i, r := range []da.Region{e.Stage1, e.Stage2} {
				fmt.Fprintf(w, "  DA%d: %d bytes at %#08x, signature %d bytes\n", i+1, len(r.Payload()), r.LoadAddr(), r.SigLen())
			}
		}
		return nil
	},
}
