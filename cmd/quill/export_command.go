package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/queue"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Export a finished transcript as text, SRT, or VTT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				content, err := api.Export(cmd.Context(), store, id, format)
				if err != nil {
					return err
				}
				if output == "" {
					fmt.Fprint(cmd.OutOrStdout(), content)
					return nil
				}
				if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s transcript to %s\n", format, output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", api.FormatText, "Export format: text, srt, or vtt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				outcome, err := api.Cancel(cmd.Context(), store, id)
				if err != nil {
					return err
				}
				if outcome.Immediate {
					fmt.Fprintf(cmd.OutOrStdout(), "Job %d cancelled\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested; job %d stops at the next stage boundary\n", id)
				}
				return nil
			})
		},
	}
}
