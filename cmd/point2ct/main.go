package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:   "point2ct",
		Short: "Point-to-CT plane construction for segmented 3D reconstructions",
		Long: `point2ct snaps picks onto a segmented surface point cloud, builds the
square extraction plane around the picked point, tilts it by up to three
angles and submits the plane extraction request to the backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "point2ct.yaml", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(
		newInitConfigCmd(app),
		newSummaryCmd(app),
		newSnapCmd(app),
		newSquareCmd(app),
		newTrajectoryCmd(app),
		newSubmitCmd(app),
	)

	return rootCmd
}
