package main

import (
	"github.com/spf13/cobra"

	"avconverter/internal/api"
	"avconverter/internal/catalog"
)

func newFormatsCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "formats",
		Short:       "List the supported output formats",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := catalog.All()
			if jsonOut {
				return writeJSON(cmd, api.FormatsResponse{Formats: api.FromFormats(formats)})
			}

			rows := make([][]string, 0, len(formats))
			for _, format := range formats {
				rows = append(rows, []string{
					format.Name,
					format.Display,
					string(format.Kind),
					yesNo(format.NativeExport),
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"Format", "Description", "Kind", "Native Export"},
				rows, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the format catalog as JSON")
	return cmd
}
