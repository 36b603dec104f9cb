package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/api/response"
)

// healthReporter is implemented by backends that can describe the server
type healthReporter interface {
	Health(ctx context.Context) (response.Health, error)
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hr, ok := app.Storage.(healthReporter); ok {
				result, err := hr.Health(cmd.Context())
				if err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			if err := app.Storage.Ping(cmd.Context()); err != nil {
				return err
			}
			out.Print(response.Health{Status: "ok", Storage: app.StorageType})
			return nil
		},
	}
}
