package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/internal/display"
	"github.com/rwcarlsen/swarmloc/match"
	"github.com/rwcarlsen/swarmloc/swarm"
)

const (
	ModeText    = "text"
	ModeAnimate = "animate"
)

// Config is a complete localization run.  It can be written as a YAML file
// and passed with --config; flags given on the command line override the
// file.
type Config struct {
	// Model and Target are image files.  If both are empty a synthetic
	// scene is generated instead.
	Model  string `json:"model,omitempty"`
	Target string `json:"target,omitempty"`

	Particles int     `json:"particles"`
	C1        float64 `json:"c1"`
	C2        float64 `json:"c2"`
	Tolerance float64 `json:"tolerance"`
	Seed      int64   `json:"seed"`
	MaxEpochs int     `json:"maxEpochs"`

	Mode string `json:"mode"`
	FPS  int    `json:"fps"`

	// DB is an sqlite file receiving the swarm trajectory.
	DB      string `json:"db,omitempty"`
	Archive int    `json:"archive"`
	Trace   bool   `json:"trace,omitempty"`

	Verbosity int `json:"verbosity,omitempty"`

	Scene SceneConfig `json:"scene"`
}

// SceneConfig describes a synthetic target and the window cut from it to
// serve as the model.
type SceneConfig struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	Blobs       int `json:"blobs"`
	ModelWidth  int `json:"modelWidth"`
	ModelHeight int `json:"modelHeight"`
	// X and Y are the column and row the model is cut from.  The YAML
	// keys are modelX and modelY since a bare y reads as a boolean.
	X int `json:"modelX"`
	Y int `json:"modelY"`
}

func DefaultConfig() Config {
	return Config{
		Particles: swarm.DefaultParticles,
		C1:        swarm.DefaultCognition,
		C2:        swarm.DefaultSocial,
		Tolerance: match.DefaultTol,
		Seed:      swarm.DefaultSeed,
		MaxEpochs: swarm.DefaultMaxEpochs,
		Mode:      ModeText,
		FPS:       display.DefaultFPS,
		Archive:   match.DefaultCandidates,
		Scene: SceneConfig{
			Width:       160,
			Height:      120,
			Blobs:       6,
			ModelWidth:  24,
			ModelHeight: 18,
			X:           97,
			Y:           41,
		},
	}
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("locate", pflag.ContinueOnError)
	fs.StringVar(&cfg.Model, "model", cfg.Model, "model image file (PNG or JPEG)")
	fs.StringVar(&cfg.Target, "target", cfg.Target, "target image file (PNG or JPEG)")
	fs.IntVarP(&cfg.Particles, "particles", "n", cfg.Particles, "number of particles")
	fs.Float64Var(&cfg.C1, "c1", cfg.C1, "cognitive learning factor")
	fs.Float64Var(&cfg.C2, "c2", cfg.C2, "social learning factor")
	fs.Float64Var(&cfg.Tolerance, "tol", cfg.Tolerance, "position spread at which the swarm has converged")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.MaxEpochs, "max-epochs", cfg.MaxEpochs, "epoch cap")
	fs.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "output mode: text or animate")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "animation frames per second")
	fs.StringVar(&cfg.DB, "db", cfg.DB, "sqlite file to record the swarm trajectory in")
	fs.IntVar(&cfg.Archive, "archive", cfg.Archive, "number of alternative candidates to report")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "print every objective evaluation to stderr")
	fs.IntVarP(&cfg.Verbosity, "verbose", "v", cfg.Verbosity, "log verbosity")
	fs.IntVar(&cfg.Scene.Width, "scene-width", cfg.Scene.Width, "synthetic target width")
	fs.IntVar(&cfg.Scene.Height, "scene-height", cfg.Scene.Height, "synthetic target height")
	fs.IntVar(&cfg.Scene.Blobs, "scene-blobs", cfg.Scene.Blobs, "number of blobs in the synthetic target")
	fs.IntVar(&cfg.Scene.ModelWidth, "scene-model-width", cfg.Scene.ModelWidth, "synthetic model width")
	fs.IntVar(&cfg.Scene.ModelHeight, "scene-model-height", cfg.Scene.ModelHeight, "synthetic model height")
	fs.IntVar(&cfg.Scene.X, "scene-x", cfg.Scene.X, "column the synthetic model is cut from")
	fs.IntVar(&cfg.Scene.Y, "scene-y", cfg.Scene.Y, "row the synthetic model is cut from")
	return fs
}

// ParseArgs builds the run configuration from the defaults, the YAML file
// named by --config (if any) and the remaining flags, in that order.
func ParseArgs(args []string) (Config, error) {
	cfg := DefaultConfig()
	fs := newFlagSet(&cfg)
	path := fs.String("config", "", "YAML run configuration")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		filecfg, err := LoadConfig(*path)
		if err != nil {
			return cfg, err
		}
		override := newFlagSet(&filecfg)
		var seterr error
		fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" || seterr != nil {
				return
			}
			seterr = override.Set(f.Name, f.Value.String())
		})
		if seterr != nil {
			return cfg, seterr
		}
		cfg = filecfg
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads a YAML run configuration on top of the defaults.
// Unknown fields are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Mode != ModeText && c.Mode != ModeAnimate:
		return fmt.Errorf("%w: unknown mode %q", swarmloc.ConfigErr, c.Mode)
	case (c.Model == "") != (c.Target == ""):
		return fmt.Errorf("%w: model and target images must be given together", swarmloc.ConfigErr)
	case c.Archive < 0:
		return fmt.Errorf("%w: negative archive size %v", swarmloc.ConfigErr, c.Archive)
	}
	if c.Model == "" {
		s := c.Scene
		if s.ModelWidth < 1 || s.ModelHeight < 1 || s.X < 0 || s.Y < 0 ||
			s.X+s.ModelWidth > s.Width || s.Y+s.ModelHeight > s.Height {
			return fmt.Errorf("%w: %vx%v model at (%v, %v) does not fit the %vx%v scene",
				swarmloc.ConfigErr, s.ModelWidth, s.ModelHeight, s.X, s.Y, s.Width, s.Height)
		}
	}
	return nil
}
