package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"minutes/internal/api"
	"minutes/internal/services"
)

const defaultRelatedLimit = 5

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage processed meetings",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryDeleteCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryRelatedCommand(ctx))

	return historyCmd
}

// withHistory runs fn against a service backed by the history store.
func withHistory(ctx *commandContext, fn func(*api.MeetingService) error) error {
	svc, closeSvc, err := ctx.newService(serviceOptions{history: true})
	if err != nil {
		return err
	}
	defer closeSvc()
	return fn(svc)
}

func parseMeetingID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid meeting id %q", value)
	}
	return id, nil
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List processed meetings, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(svc *api.MeetingService) error {
				meetings, err := svc.Search(cmd.Context(), search)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.MeetingListResponse{Meetings: meetings, Search: strings.TrimSpace(search)})
				}
				out := cmd.OutOrStdout()
				if len(meetings) == 0 {
					if strings.TrimSpace(search) != "" {
						fmt.Fprintf(out, "No meetings match %q\n", strings.TrimSpace(search))
					} else {
						fmt.Fprintln(out, "No meetings recorded yet")
					}
					return nil
				}
				fmt.Fprintln(out, renderMeetingTable(meetings))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by title, meeting time, participants or topics")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderMeetingTable(meetings []api.Meeting) string {
	rows := make([][]string, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.CreatedAt,
			truncate(m.Title, 40),
			truncate(joinOrDash(m.Participants), 30),
			strconv.Itoa(len(m.ActionItems)),
		})
	}
	return renderTable(
		[]string{"ID", "Created", "Title", "Participants", "Actions"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMeetingID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return withHistory(ctx, func(svc *api.MeetingService) error {
				m, err := svc.Get(cmd.Context(), id)
				if err != nil {
					return historyError(err)
				}
				if jsonOutput {
					return writeJSON(cmd, api.MeetingResponse{Meeting: *m})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Meeting #%d: %s\n", m.ID, m.Title)
				fmt.Fprintf(out, "Recorded:      %s\n", m.CreatedAt)
				fmt.Fprintf(out, "Meeting time:  %s\n", m.MeetingTime)
				fmt.Fprintf(out, "Participants:  %s\n", joinOrDash(m.Participants))
				fmt.Fprintf(out, "Report:        %s\n", filepath.Join(cfg.Paths.ReportsDir, m.ReportFile))
				fmt.Fprintln(out, "Topics:")
				printBullets(cmd, m.Topics, "No topics recorded")
				fmt.Fprintln(out, "Action items:")
				items := make([]string, 0, len(m.ActionItems))
				for _, item := range m.ActionItems {
					items = append(items, item.String())
				}
				printBullets(cmd, items, "No action items recorded")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printBullets(cmd *cobra.Command, values []string, empty string) {
	out := cmd.OutOrStdout()
	if len(values) == 0 {
		fmt.Fprintf(out, "  %s\n", empty)
		return
	}
	for _, v := range values {
		fmt.Fprintf(out, "  - %s\n", v)
	}
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete meetings and their reports",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseMeetingID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withHistory(ctx, func(svc *api.MeetingService) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					if err := svc.Delete(cmd.Context(), id); err != nil {
						return historyError(err)
					}
					fmt.Fprintf(out, "Deleted meeting %d\n", id)
				}
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stored meetings and report disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(svc *api.MeetingService) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Meetings", strconv.Itoa(stats.TotalMeetings)},
					{"Report storage", fmt.Sprintf("%.2f MB", stats.TotalSizeMB)},
				}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newHistoryRelatedCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "List meetings that share participants or topics with a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMeetingID(args[0])
			if err != nil {
				return err
			}
			return withHistory(ctx, func(svc *api.MeetingService) error {
				related, err := svc.Related(cmd.Context(), id, limit)
				if err != nil {
					return historyError(err)
				}
				if jsonOutput {
					if related == nil {
						related = []api.RelatedMeeting{}
					}
					return writeJSON(cmd, related)
				}
				out := cmd.OutOrStdout()
				if len(related) == 0 {
					fmt.Fprintf(out, "No meetings related to %d\n", id)
					return nil
				}
				rows := make([][]string, 0, len(related))
				for _, r := range related {
					rows = append(rows, []string{
						strconv.FormatInt(r.ID, 10),
						fmt.Sprintf("%.2f", r.Score),
						truncate(r.Title, 40),
						truncate(joinOrDash(r.Topics), 40),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Score", "Title", "Topics"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultRelatedLimit, "Maximum number of related meetings")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// historyError replaces not-found failures with the user-facing sentence.
func historyError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return errors.New(api.UserMessage(err))
	}
	return err
}
