// Package cmd implements the command-line interface for marquee.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/api"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/schedule"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/util"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntP("device", "d", 0, "Device identifier to request the playlist for")
	previewCmd.Flags().BoolP("all", "a", false, "Include creatives outside their schedule window")
	previewCmd.SetOut(os.Stdout)
}

// previewCmd fetches and prints the playlist without starting playback.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Fetch and print the playlist for a device without starting playback",
	Run: func(cmd *cobra.Command, args []string) {
		deviceID := lo.Must(cmd.Flags().GetInt("device"))
		if deviceID == 0 {
			deviceID = viper.GetInt(key.DeviceID)
		}
		if deviceID == 0 {
			handleErr(errors.New("no device id configured; set " + key.DeviceID + " or pass --device"))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rows, err := api.NewClient(viper.GetString(key.APIBaseURL)).FetchPlaylist(ctx, deviceID)
		handleErr(err)

		items := make([]creative.Item, 0, len(rows))
		for _, row := range rows {
			if item, ok := schedule.MapRow(row); ok {
				items = append(items, item)
			}
		}

		eligible := schedule.Filter(items, time.Now())
		eligibleIDs := lo.SliceToMap(eligible, func(item creative.Item) (int, struct{}) {
			return item.ID, struct{}{}
		})

		if !lo.Must(cmd.Flags().GetBool("all")) {
			items = eligible
		}

		cmd.Printf("%s for device %d (%s eligible now)\n\n",
			style.Bold(util.Quantify(len(items), "creative", "creatives")),
			deviceID,
			util.Quantify(len(eligible), "is", "are"))

		for _, item := range items {
			marker := style.Fg(color.Green)("●")
			if _, ok := eligibleIDs[item.ID]; !ok {
				marker = style.Fg(color.Red)("○")
			}

			cmd.Printf("%s %s %s %s\n",
				marker,
				style.Faint(fmt.Sprintf("#%-5d", item.ID)),
				style.Fg(color.Purple)(fmt.Sprintf("%-11s", item.Category())),
				item.CreativeURL,
			)

			if item.StartTime != "" || item.EndTime != "" {
				cmd.Printf("  %s\n", style.Faint(fmt.Sprintf("window %s - %s", lo.Ternary(item.StartTime != "", item.StartTime, "00:00:00"), lo.Ternary(item.EndTime != "", item.EndTime, "24:00:00"))))
			}
		}
	},
}
