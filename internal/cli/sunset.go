package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// sunsetCmd prints today's local sunset as the server would resolve it
var sunsetCmd = &cobra.Command{
	Use:   "sunset",
	Short: "Look up today's sunset (with the configured offset)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sunset.Timeout+time.Second)
		defer cancel()

		t, err := buildSunsetSource(cfg, nil, logger, nil).Sunset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sunsetCmd)
}
