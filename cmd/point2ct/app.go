package main

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"point2ct/pkg/config"
	"point2ct/pkg/geometry"
	"point2ct/pkg/session"
	"point2ct/pkg/snap"
)

// app carries the state shared by all commands.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	out := io.Discard
	if a.verbose || cfg.Output.Verbose {
		out = os.Stderr
	}
	a.logger = log.New(out, "point2ct: ", log.LstdFlags)

	return nil
}

// planeFlags are the options shared by commands that build a square.
type planeFlags struct {
	at        string
	rayNormal string
	axis      string
	angles    string
	batchID   string
	threshold float64
}

func (f *planeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.at, "at", "", "Picked position as x,y,z")
	flags.StringVar(&f.rayNormal, "ray-normal", "", "Raycast normal as x,y,z, used when the snapped point has none")
	flags.StringVar(&f.axis, "axis", "", "Reference axis x, y or z (default from config)")
	flags.StringVar(&f.angles, "angles", "0,0,0", "Rotation angles in degrees as a1,a2,a3")
	flags.StringVar(&f.batchID, "batch", "", "Backend batch id")
	flags.Float64Var(&f.threshold, "threshold", 0, "Snap threshold in mm (default from config)")
}

// newSession builds a session from config overridden by flags.
func (a *app) newSession(f *planeFlags) (*session.Session, error) {
	opts, err := a.cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	if f.axis != "" {
		axis, err := geometry.ParseAxis(f.axis)
		if err != nil {
			return nil, err
		}
		opts.Axis = axis
	}
	if f.threshold > 0 {
		opts.SnapThreshold = f.threshold
	}

	s := session.New(opts)
	s.SetBatchID(f.batchID)
	return s, nil
}

// pick snaps the --at position onto the cloud and applies the angles.
func (a *app) pick(s *session.Session, f *planeFlags, ix *snap.Index) (snap.Hit, error) {
	if f.at == "" {
		return snap.Hit{}, errors.New("--at is required")
	}
	query, err := geometry.ParseVec(f.at)
	if err != nil {
		return snap.Hit{}, err
	}

	var rayNormal *r3.Vec
	if f.rayNormal != "" {
		n, err := geometry.ParseVec(f.rayNormal)
		if err != nil {
			return snap.Hit{}, err
		}
		rayNormal = &n
	}

	hit, ok := s.Pick(query, rayNormal, ix)
	if !ok {
		return snap.Hit{}, errors.Errorf("no surface point within snap threshold of %s", f.at)
	}
	a.logger.Printf("Snapped to point %d at distance %.3f", hit.Index, hit.Distance)

	angles, err := parseAngles(f.angles)
	if err != nil {
		return snap.Hit{}, err
	}
	s.SetAngle(session.Angle1, angles[0])
	s.SetAngle(session.Angle2, angles[1])
	s.SetAngle(session.Angle3, angles[2])

	return hit, nil
}

func parseAngles(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, errors.Errorf("angles %q: expected a1,a2,a3", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, errors.Wrapf(err, "angles %q", s)
		}
		out[i] = f
	}
	return out, nil
}
