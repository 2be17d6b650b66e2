package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Report the size and byte order of an image",
		Long: `The info command opens an image and reports its length, byte order,
and addressing mode.

Example:
  pedump info kernel32.dll
  pedump info firmware.bin --big-endian --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	path := args[0]

	img, err := openImage(path)
	if err != nil {
		return err
	}
	defer img.Close()

	info := map[string]any{
		"file":       path,
		"length":     img.Length(),
		"endianness": img.Endianness().String(),
		"mapped":     img.IsMapped(),
		"base":       img.BaseAddress(),
	}
	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nImage Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Length: %s\n", formatSize(img.Length()))
	printInfo("  Endianness: %s\n", img.Endianness())
	printInfo("  Mapped: %t\n", img.IsMapped())
	printInfo("  Base: %#x\n", img.BaseAddress())
	return nil
}

func formatSize(size int64) string {
	switch {
	case size < 0:
		return "unknown"
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
