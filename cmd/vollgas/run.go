// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/hwlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(f *flags) *cobra.Command {
	var (
		steps       int
		cycles      int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a demo circuit",
		Long: `Run a demo circuit and log the value of its outputs after every step.

        $ vollgas run --demo adder --steps 32
        `,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, d, cfg, err := f.circuit(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Dispose()
			if cycles <= 0 {
				cycles = cfg.Simulation.CyclesPerStep
			}
			outs, err := hwlib.OutputAddresses(d.root)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			if metricsAddr != "" {
				err := vollgas.RegisterMetrics(prometheus.DefaultRegisterer)
				if _, ok := err.(prometheus.AlreadyRegisteredError); err != nil && !ok {
					return err
				}
				serveMetrics(ctx, g, metricsAddr)
			}
			g.Go(func() error {
				defer cancel()
				start := time.Now()
				for i := 0; i < steps && ctx.Err() == nil; i++ {
					c.Step(cycles)
					log.WithFields(d.probe(c, outs)).WithField("n", c.Steps()).Info("step")
				}
				log.WithFields(log.Fields{
					"backend": c.Backend(),
					"cycles":  c.Steps() + 1,
					"elapsed": time.Since(start),
				}).Info("done")
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 20, "number of steps")
	cmd.Flags().IntVar(&cycles, "cycles-per-step", 0, "cycles per step (default from the configuration)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	return cmd
}

// serveMetrics serves the default prometheus registry on addr until ctx is
// done.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	g.Go(func() error {
		log.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})
}
