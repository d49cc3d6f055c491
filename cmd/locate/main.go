// Command locate finds a model image inside a target image with a particle
// swarm and prints the best window position, or animates the search in the
// terminal.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"math/rand"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/mat"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/internal/display"
	"github.com/rwcarlsen/swarmloc/match"
	"github.com/rwcarlsen/swarmloc/swarm"
)

func main() {
	cfg, err := ParseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "locate:", err)
		os.Exit(2)
	}

	stdr.SetVerbosity(cfg.Verbosity)
	log := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))

	if err := run(cfg, log, os.Stdout); err != nil {
		log.Error(err, "localization failed")
		os.Exit(1)
	}
}

func run(cfg Config, log logr.Logger, w io.Writer) error {
	model, target, err := images(cfg, log)
	if err != nil {
		return err
	}

	opts := []swarm.Option{
		swarm.Particles(cfg.Particles),
		swarm.LearnFactors(cfg.C1, cfg.C2),
		swarm.Seed(cfg.Seed),
		swarm.MaxEpochs(cfg.MaxEpochs),
		swarm.Archive(cfg.Archive),
	}
	if cfg.Trace {
		ev := &traceEvaler{Evaler: swarmloc.SerialEvaler{}, w: os.Stderr}
		opts = append(opts, swarm.Evaler(match.PixelEvaler{Evaler: swarmloc.NewCacheEvaler(ev)}))
	}
	if cfg.DB != "" {
		db, err := sql.Open("sqlite3", cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, swarm.DB(db))
	}

	switch cfg.Mode {
	case ModeAnimate:
		// the terminal belongs to the animation; keep log lines out of it
		s, err := match.NewSwarm(model, target, cfg.Tolerance, opts...)
		if err != nil {
			return err
		}
		if err := animate(s, model, target, cfg.FPS); err != nil {
			return err
		}
		return report(w, s)
	default:
		opts = append(opts, swarm.Logger(log))
		s, err := match.NewSwarm(model, target, cfg.Tolerance, opts...)
		if err != nil {
			return err
		}
		if err := s.Minimize(); err != nil {
			return err
		}
		return report(w, s)
	}
}

// images loads the model and target files or generates a synthetic scene.
func images(cfg Config, log logr.Logger) (model, target *mat.Dense, err error) {
	if cfg.Model != "" {
		if model, err = match.Load(cfg.Model); err != nil {
			return nil, nil, err
		}
		if target, err = match.Load(cfg.Target); err != nil {
			return nil, nil, err
		}
		return model, target, nil
	}

	sc := cfg.Scene
	target = match.Scene(rand.New(rand.NewSource(cfg.Seed)), sc.Width, sc.Height, sc.Blobs)
	model = match.Crop(target, sc.X, sc.Y, sc.ModelWidth, sc.ModelHeight)
	log.Info("generated synthetic scene", "width", sc.Width, "height", sc.Height,
		"modelWidth", sc.ModelWidth, "modelHeight", sc.ModelHeight, "x", sc.X, "y", sc.Y)
	return model, target, nil
}

func animate(s *swarm.Swarm, model, target *mat.Dense, fps int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	h, w := model.Dims()
	r, c := target.Dims()
	v := display.View{Width: float64(c), Height: float64(r), BoxW: float64(w), BoxH: float64(h)}

	a := display.NewAnimator(screen)
	defer a.Close()
	quit, err := a.Run(s.Iter(), v, fps)
	if err != nil {
		return err
	} else if !quit {
		a.Wait()
	}
	return nil
}

func report(w io.Writer, s *swarm.Swarm) error {
	if err := s.PrintInfo(w); err != nil {
		return err
	}

	r := match.Summarize(s)
	state := "converged"
	if !r.Converged {
		state = "stopped at epoch cap"
	}
	fmt.Fprintf(w, "Model found at x=%v y=%v (%v after %v objective evaluations)\n",
		r.X, r.Y, state, humanize.Comma(int64(r.Neval)))
	if len(r.Candidates) > 1 {
		fmt.Fprintln(w, "Candidates:")
		for _, c := range r.Candidates {
			fmt.Fprintf(w, "    x=%v y=%v dissimilarity=%.6g\n", c.X, c.Y, c.Val)
		}
	}
	return nil
}

// traceEvaler passes every objective call through one ObjectivePrinter so
// evaluations are numbered across epochs.
type traceEvaler struct {
	swarmloc.Evaler
	w       io.Writer
	printer *swarmloc.ObjectivePrinter
}

func (ev *traceEvaler) Eval(obj swarmloc.Objectiver, points ...swarmloc.Point) ([]swarmloc.Point, int, error) {
	if ev.printer == nil {
		ev.printer = swarmloc.NewObjectivePrinter(obj, ev.w)
	}
	return ev.Evaler.Eval(ev.printer, points...)
}
