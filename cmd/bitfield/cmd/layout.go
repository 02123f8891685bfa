package cmd

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/bearlytools/bitfield"
)

type fieldLayout struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Offset       int    `json:"offset"`
	Bits         int    `json:"bits"`
	Raw          string `json:"raw"`
	ByteBegin    int    `json:"byteBegin"`
	ByteEnd      int    `json:"byteEnd"`
	Window       int    `json:"window"`
	Crosses      bool   `json:"crosses"`
	IntraOffset  int    `json:"intraOffset"`
	OverflowBits int    `json:"overflowBits,omitzero"`
	LowMask      string `json:"lowMask"`
	HighMask     string `json:"highMask,omitempty"`
}

type structLayout struct {
	Name      string        `json:"name"`
	TotalBits int           `json:"totalBits"`
	Size      int           `json:"size"`
	Fields    []fieldLayout `json:"fields"`
}

func describe(t *bitfield.Type) structLayout {
	plan := t.Plan()
	sl := structLayout{
		Name:      plan.Name(),
		TotalBits: plan.TotalBits(),
		Size:      plan.Size(),
		Fields:    make([]fieldLayout, 0, plan.Len()),
	}
	for _, f := range plan.Fields() {
		a := f.Accessor
		fl := fieldLayout{
			Name:         f.Name,
			Type:         f.Spec.String(),
			Offset:       f.Offset,
			Bits:         f.Spec.Bits(),
			Raw:          f.Spec.Raw().String(),
			ByteBegin:    a.ByteBegin(),
			ByteEnd:      a.ByteEnd(),
			Window:       a.Window(),
			Crosses:      a.Crosses(),
			IntraOffset:  a.IntraOffset(),
			OverflowBits: a.OverflowBits(),
			LowMask:      fmt.Sprintf("%#x", a.LowMask()),
		}
		if a.Crosses() {
			fl.HighMask = fmt.Sprintf("%#x", a.HighMask())
		}
		sl.Fields = append(sl.Fields, fl)
	}
	return sl
}

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout <schema>",
	Short: "Print the layout of every Bitfield in a schema",
	Long: `Print the layout of every Bitfield in a schema as JSON.

For each field this shows its bit offset, width, raw type, the bytes it is read
from and whether it crosses into an extra byte.

Example:
  bitfield layout tables.bf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadSchema(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := make([]structLayout, 0, len(r.Types()))
		for _, t := range r.Types() {
			out = append(out, describe(t))
		}
		b, err := json.Marshal(out, jsontext.WithIndent("  "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
