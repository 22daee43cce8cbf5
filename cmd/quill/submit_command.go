package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var title string
	var languageHint string
	var diarize bool
	var translate bool
	var targetLanguage string

	cmd := &cobra.Command{
		Use:   "submit <audio-file>",
		Short: "Queue an audio file for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				job, err := api.Submit(cmd.Context(), cfg, store, logging.NewNop(), api.SubmitParams{
					SourcePath:        args[0],
					Title:             title,
					LanguageHint:      languageHint,
					EnableDiarization: diarize,
					EnableTranslation: translate,
					TargetLanguage:    targetLanguage,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued job %d (%s)\n", job.ID, job.UUID)
				fmt.Fprintf(out, "Title: %s\n", job.Title)
				fmt.Fprintf(out, "Diarization: %s  Translation: %s\n", yesNo(job.EnableDiarization), yesNo(job.EnableTranslation))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Display title for the job (defaults to the file name)")
	cmd.Flags().StringVarP(&languageHint, "language", "l", "", "ISO 639 language hint, skips automatic detection")
	cmd.Flags().BoolVar(&diarize, "diarize", false, "Label speakers in the transcript")
	cmd.Flags().BoolVar(&translate, "translate", false, "Translate the transcript after recognition")
	cmd.Flags().StringVar(&targetLanguage, "target-lang", "", "Translation target language (defaults to config)")
	return cmd
}
