package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"minutes/internal/api"
	"minutes/internal/services"
)

// processResult is the per-file outcome of `minutes process`.
type processResult struct {
	File       string      `json:"file"`
	Report     *api.Report `json:"report,omitempty"`
	ReportPath string      `json:"reportPath,omitempty"`
	Error      string      `json:"error,omitempty"`
	Stage      string      `json:"stage,omitempty"`
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var parallel int
	var noHistory bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "process <notes-file>...",
		Short: "Extract meeting details from note files and write PDF reports",
		Long: "Extract meeting details from one or more note files and write a PDF report for each.\n" +
			"Use - to read notes from standard input.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1")
			}
			if err := checkStdinArgs(args); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, closeSvc, err := ctx.newService(serviceOptions{history: !noHistory})
			if err != nil {
				return err
			}
			defer closeSvc()

			results := processFiles(cmd, svc, args, parallel)
			for i := range results {
				if results[i].Report != nil {
					results[i].ReportPath = filepath.Join(cfg.Paths.ReportsDir, results[i].Report.ReportFile)
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				printProcessResults(cmd, results)
			}

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d notes failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 1, "Number of notes processed concurrently")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record processed meetings in the history database")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

// checkStdinArgs rejects more than one "-" since stdin can be read once.
func checkStdinArgs(args []string) error {
	seen := false
	for _, arg := range args {
		if arg != stdinArg {
			continue
		}
		if seen {
			return fmt.Errorf("standard input (%s) can be given only once", stdinArg)
		}
		seen = true
	}
	return nil
}

// processFiles runs every file through the service, at most parallel at a
// time. Failures are recorded per file and never cancel siblings.
func processFiles(cmd *cobra.Command, svc *api.MeetingService, files []string, parallel int) []processResult {
	results := make([]processResult, len(files))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)

	for i, file := range files {
		results[i].File = file
		g.Go(func() error {
			text, err := readNotes(cmd, file)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			rep, err := svc.CreateReport(gctx, text)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				results[i].Error = api.UserMessage(err)
				results[i].Stage = services.StageOf(err)
				return nil
			}
			results[i].Report = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i := range results {
			if results[i].Report == nil && results[i].Error == "" {
				results[i].Error = "cancelled"
			}
		}
	}
	return results
}

func printProcessResults(cmd *cobra.Command, results []processResult) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Report == nil {
			rows = append(rows, []string{r.File, "-", "failed", r.Error})
			continue
		}
		saved := "report only"
		if r.Report.Persisted {
			saved = "#" + strconv.FormatInt(r.Report.MeetingID, 10)
		}
		rows = append(rows, []string{r.File, truncate(r.Report.Record.Title(), 40), saved, r.ReportPath})
	}
	fmt.Fprintln(out, renderTable([]string{"Notes", "Title", "History", "Report"}, rows, nil))
}
