package commands

import (
	"os"
	"uclasoc/lib/serviceutil"
	"uclasoc/services/rooms"

	"github.com/spf13/cobra"
)

var roomsBuilding *string
var roomsRoom *string

func init() {
	roomsBuilding = roomsCmd.Flags().StringP("building", "b", "", "Building code, see the building list.")
	roomsRoom = roomsCmd.Flags().StringP("room", "r", "", "Room number.")
	rootCmd.AddCommand(roomsCmd)
}

var roomsCmd = &cobra.Command{
	Use:   "rooms <term> [-b <building>] [-r <room>]",
	Short: "Look up campus buildings and classroom schedules.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := rooms.NewService(newFetcher())

		var err error
		if *roomsBuilding == "" {
			err = service.Buildings(cmd.Context(), os.Stdout)
		} else {
			err = service.Room(cmd.Context(), os.Stdout, args[0], *roomsBuilding, *roomsRoom)
		}
		if err != nil {
			serviceutil.Fatal("failed to look up rooms", err)
		}
	},
}
