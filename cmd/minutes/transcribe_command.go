package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"minutes/internal/api"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var processNotes bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a meeting recording",
		Long: "Transcribe a meeting recording with the configured speech engine and print the text.\n" +
			"With --process the transcript is also turned into a PDF report.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, closeSvc, err := ctx.newService(serviceOptions{history: processNotes, transcribe: true})
			if err != nil {
				return err
			}
			defer closeSvc()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open audio: %w", err)
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return fmt.Errorf("stat audio: %w", err)
			}

			transcript, err := svc.Transcribe(cmd.Context(), filepath.Base(args[0]), info.Size(), file)
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage(err), err)
			}

			var rep *api.Report
			if processNotes {
				rep, err = svc.CreateReport(cmd.Context(), transcript.Text)
				if err != nil {
					return fmt.Errorf("%s: %w", api.UserMessage(err), err)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Transcript *api.Transcript `json:"transcript"`
					Report     *api.Report     `json:"report,omitempty"`
				}{transcript, rep})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, transcript.Text)
			if rep != nil {
				fmt.Fprintf(out, "\nReport: %s\n", filepath.Join(cfg.Paths.ReportsDir, rep.ReportFile))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&processNotes, "process", false, "Also extract meeting details and write a PDF report")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
