package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <schema> <Bitfield> <json>",
	Short: "Encode JSON to packed bytes",
	Long: `Encode a JSON object to packed bytes, printed in hex with the lowest byte first.
Fields that are not in the object are zero.

Example:
  bitfield encode tables.bf Entry '{"vector": 32, "mode": "Level"}'`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := lookupType(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		s := t.New()
		defer t.Release(s)

		if err := s.DecodeJSON(strings.NewReader(args[2])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(s.Bytes()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
