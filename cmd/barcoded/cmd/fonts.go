package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// fontsCmd lists the font families usable for human-readable text.
var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List usable font families",
	Long: `List the font families the renderer accepts as fontName, the same list
served by GET /fonts. The Go fonts are always present; system fonts are read
from the configured font directories.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRenderer(GetConfig())
		if err != nil {
			return err
		}
		names := r.Fonts().Names()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(names)
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fontsCmd)
	fontsCmd.Flags().Bool("json", false, "print a JSON array")
}
