package main

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"minutes/internal/notes"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [notes-file]",
		Short: "Check notes against the input rules without calling the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := stdinArg
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readNotes(cmd, path)
			if err != nil {
				return err
			}

			text = notes.Normalize(text)
			if err := notes.Validate(text, noteLimits(cfg)); err != nil {
				var rejected *notes.RejectedError
				if errors.As(err, &rejected) {
					return fmt.Errorf("%s (%s)", rejected.Message, rejected.Reason)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notes accepted (%d characters)\n", utf8.RuneCountInString(text))
			return nil
		},
	}
}
