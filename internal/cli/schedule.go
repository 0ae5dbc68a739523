package cli

import (
	"context"
	"fmt"
	"time"

	"smarthub/internal/schedule"

	"github.com/spf13/cobra"
)

var (
	scheduleLight    string
	scheduleDuration string
)

// scheduleCmd resolves a light schedule without touching the store
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Compute the light-off time for a light mode and duration",
	Example: `  smarthub schedule --light 18:30:00 --duration 2h
  smarthub schedule --light sunset --duration 1h30m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sunset.Timeout+time.Second)
		defer cancel()

		resolver := schedule.NewResolver(buildSunsetSource(cfg, nil, logger, nil))
		sched, err := resolver.Resolve(ctx, scheduleLight, scheduleDuration)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mode:           %s\n", sched.Mode)
		fmt.Fprintf(out, "user_light:     %s\n", sched.Base)
		fmt.Fprintf(out, "duration:       %s\n", sched.Duration)
		fmt.Fprintf(out, "light_time_off: %s\n", sched.LightOff)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleLight, "light", "", `Base time "HH:MM:SS" or "sunset"`)
	scheduleCmd.Flags().StringVar(&scheduleDuration, "duration", "", `Duration such as "1h30m"`)
	_ = scheduleCmd.MarkFlagRequired("light")
	rootCmd.AddCommand(scheduleCmd)
}
