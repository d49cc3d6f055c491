// Command swarmbench runs the particle swarm repeatedly against the benchmark
// functions and reports how often it reaches each known optimum.
package main

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/pflag"

	"github.com/rwcarlsen/swarmloc/bench"
	"github.com/rwcarlsen/swarmloc/swarm"
)

type options struct {
	trials    int
	seed      int64
	tol       float64
	success   float64
	particles int
	maxEpochs int
	funcs     []string
}

func main() {
	var opt options
	fs := pflag.NewFlagSet("swarmbench", pflag.ContinueOnError)
	fs.IntVar(&opt.trials, "trials", 20, "runs per function, each with its own seed")
	fs.Int64Var(&opt.seed, "seed", swarm.DefaultSeed, "seed of the first run")
	fs.Float64Var(&opt.tol, "tol", 1e-8, "position spread at which a swarm has converged")
	fs.Float64Var(&opt.success, "success", .01, "relative distance from the optimum that counts as solved")
	fs.IntVarP(&opt.particles, "particles", "n", 0, "particles per swarm (0 picks 30 plus the dimension)")
	fs.IntVar(&opt.maxEpochs, "max-epochs", 1000, "epoch cap per run")
	fs.StringSliceVar(&opt.funcs, "funcs", nil, "benchmark functions to run (default all)")
	verbosity := fs.IntP("verbose", "v", 0, "log verbosity")
	if err := fs.Parse(os.Args[1:]); errors.Is(err, pflag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "swarmbench:", err)
		os.Exit(2)
	}

	stdr.SetVerbosity(*verbosity)
	log := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))

	fns, err := selectFuncs(opt.funcs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "swarmbench:", err)
		os.Exit(2)
	}
	if err := run(os.Stdout, log, fns, opt); err != nil {
		log.Error(err, "benchmark failed")
		os.Exit(1)
	}
}

func selectFuncs(names []string) ([]bench.Func, error) {
	if len(names) == 0 {
		return bench.AllFuncs, nil
	}
	var fns []bench.Func
	for _, name := range names {
		found := false
		for _, fn := range bench.AllFuncs {
			if strings.EqualFold(fn.Name(), name) {
				fns = append(fns, fn)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown benchmark function %q", name)
		}
	}
	return fns, nil
}

func run(w io.Writer, log logr.Logger, fns []bench.Func, opt options) error {
	for _, fn := range fns {
		n := opt.particles
		if n == 0 {
			n = 30 + len(fn.Bounds())
		}
		optimum := fn.Optima()[0]

		nsuccess, totevals := 0, 0
		for i := 0; i < opt.trials; i++ {
			best, nepoch, neval, err := bench.Benchmark(fn, opt.tol,
				swarm.Particles(n),
				swarm.Seed(opt.seed+int64(i)),
				swarm.MaxEpochs(opt.maxEpochs),
				swarm.Logger(log.WithValues("func", fn.Name(), "trial", i)),
			)
			if err != nil {
				return fmt.Errorf("%v: %w", fn.Name(), err)
			}
			totevals += neval

			if bench.Solved(fn, best.Val, opt.success) {
				nsuccess++
				log.V(1).Info("succeeded", "func", fn.Name(), "evals", neval, "epochs", nepoch, "best", best)
			} else {
				log.V(1).Info("failed", "func", fn.Name(), "evals", neval, "epochs", nepoch, "best", best, "optimum", optimum)
			}
		}

		rate := 0.0
		if opt.trials > 0 {
			rate = float64(nsuccess) / float64(opt.trials) * 100
		}
		fmt.Fprintf(w, "%-18v %5.1f%% succeeded (%v evals total, optimum %v)\n",
			fn.Name(), rate, humanize.Comma(int64(totevals)), optimum.Val)
	}
	return nil
}
