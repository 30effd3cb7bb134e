package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/storytest-go/internal/story"
)

// NewParseCmd creates the parse subcommand.
func NewParseCmd(reader StoryReader) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parse <story-file>",
		Short:        "Parse a story file and output its sentences",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			path := args[0]

			data, err := reader.ReadStory(path)
			if err != nil {
				return fmt.Errorf("reading story: %w", err)
			}
			st, err := story.Parse(string(data))
			if err != nil {
				return err
			}
			out, err := story.Serialize(st, path, format)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if format != story.FormatYAML {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().String("format", story.FormatJSON, "Output format: json or yaml")

	return cmd
}
