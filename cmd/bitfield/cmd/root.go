package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gostdlib/base/context"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	osfs "github.com/gopherfs/fs/io/os"

	"github.com/bearlytools/bitfield"
	"github.com/bearlytools/bitfield/idl"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bitfield",
	Short: "Inspect bitfield schemas and packed data",
	Long: `bitfield reads schema files that describe bit-packed structures.

It prints the computed layout of every Bitfield in a schema and converts
packed bytes to JSON and back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			bitfield.SetLogger(nil)
			return nil
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		bitfield.SetLogger(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log schema building at debug level to stderr")
}

// loadSchema reads, parses and builds the schema file at path.
func loadSchema(ctx context.Context, path string) (*idl.Registry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	// Mount our filesystem for reading.
	fsys, err := osfs.New()
	if err != nil {
		return nil, fmt.Errorf("failed to mount the filesystem: %w", err)
	}

	f, err := idl.ParseFile(ctx, fsys, abs)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// lookupType loads the schema at path and returns the Bitfield called name.
func lookupType(ctx context.Context, path, name string) (*bitfield.Type, error) {
	r, err := loadSchema(ctx, path)
	if err != nil {
		return nil, err
	}
	t, ok := r.Type(name)
	if !ok {
		return nil, fmt.Errorf("schema %s has no Bitfield %q", path, name)
	}
	return t, nil
}
