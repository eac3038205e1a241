package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TwigBush/sift-go/internal/authz"
)

func cmdInit() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the resume authorization model and public-template tuple to the FGA store",
		RunE: func(cmd *cobra.Command, args []string) error {
			fga, err := authz.NewOpenFGA(authz.Config{})
			if err != nil {
				return err
			}
			modelID, err := fga.BootstrapModel(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "authorization model written: %s\npin it with FGA_MODEL_ID=%s\n", modelID, modelID)
			return nil
		},
	}
}
