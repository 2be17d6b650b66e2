package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshuapare/pekit/endian"
	"github.com/joshuapare/pekit/image"
	"github.com/joshuapare/pekit/metadata/schema"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	bigEndian bool
)

var rootCmd = &cobra.Command{
	Use:   "pedump",
	Short: "Inspect binary images and their metadata tables",
	Long: `pedump reads structures, strings, and metadata tables out of binary
images such as PE files, using a YAML schema to describe the table layout.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&bigEndian, "big-endian", false, "Treat the image as big-endian")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging installs a development logger into the library packages when
// --verbose is set.
func setupLogging() error {
	if !verbose {
		image.SetLogger(nil)
		schema.SetLogger(nil)
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	image.SetLogger(l)
	schema.SetLogger(l)
	return nil
}

// imageOrder returns the byte order selected by --big-endian.
func imageOrder() endian.Endianness {
	if bigEndian {
		return endian.Big
	}
	return endian.Little
}

// openImage opens path as a stream image in the selected byte order.
func openImage(path string) (*image.StreamImage, error) {
	printVerbose("Opening image: %s\n", path)
	img, err := image.Open(path, image.Options{Endianness: imageOrder()})
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// parseOffset accepts decimal, 0x hex, and 0o octal offsets.
func parseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return v, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
