package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/marketops/internal/visual"
)

var (
	matchFormat string
	matchScores bool
)

var matchCmd = &cobra.Command{
	Use:   "match <prompt>",
	Short: "Print the stock image chosen for a creative prompt",
	Long: `Run the prompt-to-theme matcher offline and print the chosen theme and image URL.

Examples:
  marketops match "Couple en lune de miel sur un bungalow" --format 1080x1080
  marketops match "Plongée avec les raies manta" --scores`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		m := visual.NewMatcher(visual.DefaultRegistry(), visual.FallbackTheme)
		out := cmd.OutOrStdout()
		if matchScores {
			for _, s := range m.Scores(prompt) {
				fmt.Fprintf(out, "%-12s matched=%d score=%d\n", s.Theme, s.Matched, s.Score)
			}
		}
		res := m.Match(prompt, visual.Format(matchFormat))
		fmt.Fprintf(out, "theme: %s (score %d)\nformat: %s\nurl: %s\n", res.Theme, res.Score, res.Format, res.URL)
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchFormat, "format", string(visual.DefaultFormat), "placement format, e.g. 1080x1920")
	matchCmd.Flags().BoolVar(&matchScores, "scores", false, "print per-theme scores")
}
