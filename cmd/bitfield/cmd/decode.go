package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bearlytools/bitfield"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <schema> <Bitfield> <hex>",
	Short: "Decode packed bytes to JSON",
	Long: `Decode packed bytes, given in hex with the lowest byte first, to JSON.

Example:
  bitfield decode tables.bf Entry 2001`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := lookupType(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		b, err := hex.DecodeString(strings.TrimPrefix(args[2], "0x"))
		if err != nil {
			return fmt.Errorf("invalid hex %q: %w", args[2], err)
		}
		s, err := t.FromBytes(b)
		if err != nil {
			return err
		}
		defer t.Release(s)

		enumNumbers, _ := cmd.Flags().GetBool("enum-numbers")
		w := cmd.OutOrStdout()
		if err := s.EncodeJSON(w, bitfield.WithEnumNumbers(enumNumbers), bitfield.WithIndent("  ")); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	decodeCmd.Flags().Bool("enum-numbers", false, "Write enum fields as numbers instead of names")
	rootCmd.AddCommand(decodeCmd)
}
