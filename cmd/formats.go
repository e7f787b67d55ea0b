package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/tool"
)

type formatRow struct {
	Category core.Category `json:"category"`
	Formats  []string      `json:"formats"`
}

func newFormatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "formats [file-or-extension]",
		Short: "List the conversion formats, or the targets offered for a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []formatRow
			if len(args) == 1 {
				name := args[0]
				if !strings.Contains(name, ".") {
					name = "file." + name
				}
				category, outputs := tool.FormatsFor(name)
				if category == core.CategoryUnknown {
					return fmt.Errorf("%q: %w", args[0], core.NewValidationError(core.ToolConvert, "file", core.CodeUnsupportedFormat, "unknown file type"))
				}
				rows = append(rows, formatRow{Category: category, Formats: outputs})
			} else {
				for _, c := range tool.Categories() {
					rows = append(rows, formatRow{Category: c, Formats: tool.AcceptedOutputs(c)})
				}
			}

			if jsonOutput {
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			for _, r := range rows {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", r.Category, strings.Join(r.Formats, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")

	return cmd
}
