package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/trakt"
)

var (
	checkinMedia   mediaFlags
	checkinMessage string
	checkinDelete  bool
)

// checkinCmd represents the checkin command
var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Check in to what you are watching",
	Long: `Tell Trakt what you are watching right now. The API allows one active
checkin at a time; --delete clears it.`,
	RunE: runCheckin,
}

func init() {
	rootCmd.AddCommand(checkinCmd)

	checkinMedia.register(checkinCmd)
	checkinCmd.Flags().StringVarP(&checkinMessage, "message", "m", "", "status message shared with the checkin")
	checkinCmd.Flags().BoolVar(&checkinDelete, "delete", false, "clear the active checkin instead")
}

func runCheckin(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if checkinDelete {
		if err := client.DeleteCheckin(ctx); err != nil {
			return err
		}
		fmt.Println("✓ Active checkin cleared")
		return nil
	}

	media, err := checkinMedia.scrobbleMedia()
	if err != nil {
		return err
	}

	result, err := client.Checkin(ctx, media, trakt.CheckinOptions{
		Message:    checkinMessage,
		AppVersion: appVersion,
		AppDate:    appBuildTime,
	})
	if err != nil {
		var apiErr *trakt.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == trakt.KindConflict {
			return fmt.Errorf("a checkin is already in progress (clear it with --delete)")
		}
		return err
	}

	switch {
	case result.Movie != nil:
		fmt.Printf("✓ Checked in to %s (%d)\n", result.Movie.Title, result.Movie.Year)
	case result.Episode != nil:
		fmt.Printf("✓ Checked in to %s\n", result.Episode.Title)
	default:
		fmt.Println("✓ Checked in")
	}

	return nil
}
