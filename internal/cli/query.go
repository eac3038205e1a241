package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func cmdQuery() *cobra.Command {
	var subject string

	c := &cobra.Command{
		Use:   "query [question]",
		Short: "Index the uploads directory and answer one question for a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("subject is required (-s)")
			}

			pipeline, _, err := buildPipeline(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := pipeline.IndexDir(cmd.Context(), uploadsDir); err != nil {
				return err
			}

			resp, err := pipeline.Query(cmd.Context(), subject, strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
			if len(resp.Sources) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "sources: %s\n", strings.Join(resp.Sources, ", "))
			}
			return nil
		},
	}
	c.Flags().StringVarP(&subject, "subject", "s", "", "identity asking the question, e.g. alice")
	return c
}
