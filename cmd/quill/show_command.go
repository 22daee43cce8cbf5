package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var withSegments bool

	cmd := &cobra.Command{
		Use:   "show <job-id|uuid>",
		Short: "Show details for a single job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := resolveJob(cmd, store, args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %q not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %d (%s)\n", job.ID, job.UUID)
				fmt.Fprintf(out, "  Title:       %s\n", job.Title)
				fmt.Fprintf(out, "  Source:      %s\n", job.SourcePath)
				fmt.Fprintf(out, "  Status:      %s\n", job.Status)
				if job.Status == queue.StatusProcessing {
					fmt.Fprintf(out, "  Progress:    %s %.0f%% (%s)\n", job.ProgressStage, job.ProgressPercent, job.ProgressMessage)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:       %s\n", job.ErrorMessage)
				}
				if job.DurationSeconds > 0 {
					fmt.Fprintf(out, "  Duration:    %.1fs\n", job.DurationSeconds)
				}
				fmt.Fprintf(out, "  Diarization: %s  Translation: %s\n", yesNo(job.EnableDiarization), yesNo(job.EnableTranslation))
				if job.LanguageHint != "" {
					fmt.Fprintf(out, "  Language:    %s (hint)\n", job.LanguageHint)
				}
				fmt.Fprintf(out, "  Created:     %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				if job.CompletedAt != nil {
					fmt.Fprintf(out, "  Completed:   %s\n", job.CompletedAt.Local().Format("2006-01-02 15:04:05"))
				}
				for _, note := range job.Notes() {
					fmt.Fprintf(out, "  Note:        %s\n", note)
				}

				if job.Status != queue.StatusCompleted {
					return nil
				}

				view, err := api.Transcript(cmd.Context(), store, job.ID)
				if err != nil {
					return err
				}
				if view == nil {
					return nil
				}
				if view.Language != nil {
					fmt.Fprintf(out, "  Detected:    %s (%.0f%% via %s)\n",
						view.Language.Code, view.Language.Confidence*100, view.Language.Source)
				}
				if len(view.Speakers) > 0 {
					names := make([]string, 0, len(view.Speakers))
					for _, speaker := range view.Speakers {
						names = append(names, fmt.Sprintf("%s (%.0fs)", speaker.Label, speaker.TotalSeconds))
					}
					fmt.Fprintf(out, "  Speakers:    %s\n", strings.Join(names, ", "))
				}
				fmt.Fprintf(out, "  Segments:    %d\n", len(view.Segments))

				if withSegments {
					rows := make([][]string, 0, len(view.Segments))
					for _, segment := range view.Segments {
						rows = append(rows, []string{
							strconv.Itoa(segment.ChunkIndex),
							fmt.Sprintf("%.1fs", segment.StartSeconds),
							fmt.Sprintf("%.1fs", segment.EndSeconds),
							segment.Speaker,
							truncate(segment.Text, 60),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"#", "Start", "End", "Speaker", "Text"},
						rows,
						[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withSegments, "segments", false, "Include the per-segment transcript table")
	return cmd
}

// resolveJob accepts either a numeric queue id or a job UUID.
func resolveJob(cmd *cobra.Command, store *queue.Store, key string) (*queue.Job, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return store.GetByID(cmd.Context(), id)
	}
	return store.GetByUUID(cmd.Context(), key)
}
