package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBytesCmd())
}

func newBytesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bytes <file> <offset> <length>",
		Short: "Hex dump a byte range",
		Long: `The bytes command reads length bytes at offset and prints a hex dump.
Offsets and lengths accept 0x prefixes.

Example:
  pedump bytes kernel32.dll 0 64
  pedump bytes kernel32.dll 0x3c 4 --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBytes(args)
		},
	}
	return cmd
}

func runBytes(args []string) error {
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}
	n, err := parseOffset(args[2])
	if err != nil {
		return err
	}

	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	data, err := img.BytesAt(offset, int(n))
	if err != nil {
		return fmt.Errorf("failed to read bytes: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"offset": offset,
			"length": len(data),
			"hex":    hex.EncodeToString(data),
		})
	}
	printInfo("%s", hex.Dump(data))
	return nil
}
