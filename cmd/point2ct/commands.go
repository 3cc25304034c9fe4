package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/internal/models"
	"point2ct/pkg/backend"
	"point2ct/pkg/config"
	"point2ct/pkg/export"
	"point2ct/pkg/geometry"
	"point2ct/pkg/ply"
	"point2ct/pkg/session"
	"point2ct/pkg/snap"
	"point2ct/pkg/stl"
	"point2ct/pkg/visualization"
)

func newInitConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", a.configPath)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <cloud.ply>",
		Short: "Print point cloud statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := ply.ParseFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), visualization.Summarize(points))
			return nil
		},
	}
}

func newSnapCmd(a *app) *cobra.Command {
	var at, queriesFile string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "snap <cloud.ply>",
		Short: "Find the surface points nearest to one or more positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var queries []r3.Vec
			switch {
			case at != "":
				q, err := geometry.ParseVec(at)
				if err != nil {
					return err
				}
				queries = append(queries, q)
			case queriesFile != "":
				data, err := os.ReadFile(queriesFile)
				if err != nil {
					return errors.Wrap(err, "failed to read queries")
				}
				for _, line := range strings.Split(string(data), "\n") {
					line = strings.TrimSpace(line)
					if line == "" || strings.HasPrefix(line, "#") {
						continue
					}
					q, err := geometry.ParseVec(line)
					if err != nil {
						return err
					}
					queries = append(queries, q)
				}
			default:
				return errors.New("one of --at or --queries is required")
			}

			if threshold <= 0 {
				threshold = a.cfg.Snap.Threshold
			}

			points, err := ply.ParseFile(args[0])
			if err != nil {
				return err
			}
			ix := snap.NewIndex(points)
			a.logger.Printf("Indexed %d points, snapping %d queries", ix.Len(), len(queries))

			out := cmd.OutOrStdout()
			for i, r := range snap.SnapAll(ix, queries, threshold, a.cfg.Snap.Workers) {
				if !r.OK {
					fmt.Fprintf(out, "query %d: no point within %.2f\n", i, threshold)
					continue
				}
				p := r.Hit.Point
				fmt.Fprintf(out, "query %d: index %d distance %.4f position (%g, %g, %g)",
					i, r.Hit.Index, r.Hit.Distance, p.Position.X, p.Position.Y, p.Position.Z)
				if p.HasNormal {
					fmt.Fprintf(out, " normal (%g, %g, %g)", p.Normal.X, p.Normal.Y, p.Normal.Z)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Position as x,y,z")
	cmd.Flags().StringVar(&queriesFile, "queries", "", "File with one x,y,z position per line")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Snap threshold in mm (default from config)")
	return cmd
}

func newSquareCmd(a *app) *cobra.Command {
	var f planeFlags
	var stlOut, objOut string
	var section float64

	cmd := &cobra.Command{
		Use:   "square <cloud.ply>",
		Short: "Build and rotate the extraction square around a picked point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := ply.ParseFile(args[0])
			if err != nil {
				return err
			}

			s, err := a.newSession(&f)
			if err != nil {
				return err
			}
			if _, err := a.pick(s, &f, snap.NewIndex(points)); err != nil {
				return err
			}

			sq, err := s.Square()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range sq.Corners {
				fmt.Fprintf(out, "corner %d: (%.4f, %.4f, %.4f)\n", i, c.X, c.Y, c.Z)
			}

			if stlOut != "" {
				if err := stl.SaveToSTL(stlOut, stl.FromSquare(sq)); err != nil {
					return err
				}
				a.logger.Printf("Square saved to %s", stlOut)
			}
			if objOut != "" {
				if err := visualization.SaveOBJ(objOut, sq); err != nil {
					return err
				}
				a.logger.Printf("Square saved to %s", objOut)
			}
			if section > 0 {
				pts, err := visualization.NewViewer(points).ExtractSection(sq, section)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "section: %d points within %.2f mm of the plane\n", len(pts), section/2)
			}

			return printPayload(cmd, s)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&stlOut, "stl", "", "Write the square as binary STL")
	cmd.Flags().StringVar(&objOut, "obj", "", "Write the square as OBJ")
	cmd.Flags().Float64Var(&section, "section", 0, "Report cloud points within this slab thickness of the plane")
	return cmd
}

// printPayload prints the request body when the session is complete.
func printPayload(cmd *cobra.Command, s *session.Session) error {
	p, ok := export.ToPayload(s.State())
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "payload: not ready (batch id missing)")
		return nil
	}
	data, err := export.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

func newTrajectoryCmd(a *app) *cobra.Command {
	var objOut string

	cmd := &cobra.Command{
		Use:   "trajectory <trajectory.ply>",
		Short: "Validate and describe a 5-point trajectory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := ply.ParseFile(args[0])
			if err != nil {
				return err
			}
			tr, err := models.TrajectoryFromPoints(points)
			if err != nil {
				return err
			}

			c := tr.FaceCenter()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "target: (%.4f, %.4f, %.4f)\n", tr.Target.X, tr.Target.Y, tr.Target.Z)
			fmt.Fprintf(out, "face center: (%.4f, %.4f, %.4f)\n", c.X, c.Y, c.Z)
			fmt.Fprintf(out, "length: %.4f\n", tr.Length())
			if n, ok := tr.FaceNormal(); ok {
				fmt.Fprintf(out, "face normal: (%.4f, %.4f, %.4f)\n", n.X, n.Y, n.Z)
			}

			if objOut != "" {
				file, err := os.Create(objOut)
				if err != nil {
					return errors.Wrap(err, "failed to create OBJ file")
				}
				defer file.Close()
				if err := visualization.WriteTrajectoryOBJ(file, tr); err != nil {
					return err
				}
				a.logger.Printf("Trajectory saved to %s", objOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&objOut, "obj", "", "Write the trajectory as OBJ")
	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	var f planeFlags
	var cloudName, cloudFile string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Build the plane for a pick and submit it to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.batchID == "" {
				return errors.New("--batch is required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			client := backend.New(a.cfg.Backend, nil)
			client.SetLogger(a.logger)

			var points []geometry.OrientedPoint
			var err error
			if cloudFile != "" {
				points, err = ply.ParseFile(cloudFile)
			} else {
				points, err = client.FetchPointCloud(ctx, f.batchID, cloudName)
			}
			if err != nil {
				return err
			}

			s, err := a.newSession(&f)
			if err != nil {
				return err
			}
			if _, err := a.pick(s, &f, snap.NewIndex(points)); err != nil {
				return err
			}

			// Surface degenerate axes before talking to the backend
			if _, err := s.Square(); err != nil {
				return err
			}

			p, ok := export.ToPayload(s.State())
			if !ok {
				return errors.New("session is incomplete")
			}

			resp, err := client.SubmitPlane(ctx, p)
			if err != nil {
				return errors.Wrap(err, "plane extraction failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&cloudName, "cloud", "points.ply", "Point cloud artifact name on the backend")
	cmd.Flags().StringVar(&cloudFile, "file", "", "Read the point cloud from a local file instead")
	return cmd
}
