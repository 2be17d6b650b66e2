package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stringUnicode bool

func init() {
	cmd := newStringCmd()
	cmd.Flags().BoolVarP(&stringUnicode, "unicode", "u", false, "Decode a UTF-16 string")
	rootCmd.AddCommand(cmd)
}

func newStringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "string <file> <offset>",
		Short: "Print the NUL-terminated string at an offset",
		Long: `The string command decodes the NUL-terminated string at offset. ANSI
strings are decoded as Windows-1252; --unicode reads UTF-16 in the image
byte order.

Example:
  pedump string kernel32.dll 0x4e
  pedump string module.bin 0x200 --unicode --big-endian`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runString(args)
		},
	}
	return cmd
}

func runString(args []string) error {
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	img, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	var s string
	if stringUnicode {
		s, err = img.UnicodeStringAt(offset)
	} else {
		s, err = img.AnsiStringAt(offset)
	}
	if err != nil {
		return fmt.Errorf("failed to read string: %w", err)
	}

	if jsonOut {
		return printJSON(map[string]any{"offset": offset, "value": s})
	}
	printInfo("%s\n", s)
	return nil
}
