package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lex1797/automation-scripts/internal/config"
	"github.com/Lex1797/automation-scripts/internal/organizer"
)

// NewOrganizeCmd creates the organize command.
func NewOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Sort a directory of files into category and date folders",
		Long: `Organize walks a source directory and moves every file into
<target>/<Category>/<YYYY-MM-DD>/, classifying by file content first and
extension second. Unrecognised files land under Other.

Example:
  autoscripts organize --source ~/Downloads --target ~/Sorted`,
		Args: cobra.NoArgs,
		RunE: runOrganizeCmd,
	}

	cmd.Flags().StringP("source", "s", "", "Directory to organise (required)")
	cmd.Flags().StringP("target", "t", "", "Directory to move files into (required)")
	cmd.Flags().Bool("json-log", false, "Emit structured JSON logs")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runOrganizeCmd(cmd *cobra.Command, _ []string) error {
	source, _ := cmd.Flags().GetString("source")
	target, _ := cmd.Flags().GetString("target")
	structured, _ := cmd.Flags().GetBool("json-log")

	logger, err := buildLogger(config.LoggingConfig{Level: "info", Structured: structured})
	if err != nil {
		return err
	}

	org, err := organizer.New(source, target, logger)
	if err != nil {
		return err
	}

	counts, err := org.Organize()
	if err != nil {
		return err
	}

	for _, category := range organizer.Categories {
		if counts[category] == 0 {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", category, counts[category])
	}
	return nil
}
