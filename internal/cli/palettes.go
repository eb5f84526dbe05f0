package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/palette"
)

// palettesCommand creates the palettes command.
func (c *CLI) palettesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "List the available palettes",
		Long: `List the built-in palettes and any loaded from palette_files in the config.

When a mosaic names no palette, the palette at seed mod count is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.palettes()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(set.All())
			}
			fmt.Fprintln(cmd.OutOrStdout(), paletteTable(set.All()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print palettes as JSON")
	return cmd
}

// paletteTable renders palettes with a color swatch per ink.
func paletteTable(ps []palette.Palette) string {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		inks := make([]string, len(p.Inks))
		for j, ink := range p.Inks {
			inks[j] = swatch(ink)
		}
		rows[i] = []string{
			p.Name,
			swatch(p.Background) + " " + p.Background,
			strings.Join(inks, ""),
			swatch(p.Line) + " " + p.Line,
			swatch(p.Highlight) + " " + p.Highlight,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Palette", "Background", "Inks", "Lead", "Highlight").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorTeal).Padding(0, 1)
			default:
				return lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
			}
		}).
		Render()
}

func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}
