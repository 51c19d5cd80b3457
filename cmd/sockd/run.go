/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	libvpr "github.com/spf13/viper"

	"github.com/nabbar/sockd/config"
	"github.com/nabbar/sockd/daemon"
	"github.com/nabbar/sockd/listener"
	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/metrics"
	"github.com/nabbar/sockd/pidlock"
	"github.com/nabbar/sockd/session"
)

func newRunCommand(v *libvpr.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), v)
		},
	}
}

func runDaemon(ctx context.Context, v *libvpr.Viper) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if e := v.ReadInConfig(); e != nil {
			return fmt.Errorf("reading config file: %w", e)
		}
	}

	cfg, e := config.Load(v)
	if e != nil {
		return fmt.Errorf("loading config: %w", e)
	}

	log, e := logger.NewFrom(ctx, cfg.Logging)
	if e != nil {
		return fmt.Errorf("initializing logger: %w", e)
	}
	funcLog := func() logger.Logger { return log }

	var lock pidlock.Lock
	if cfg.PidFile != "" {
		lock, e = pidlock.New(cfg.PidFile)
		if e != nil {
			return fmt.Errorf("initializing pid lock: %w", e)
		}
	}

	ctrl, e := daemon.New(cfg.Name, funcLog, lock, daemon.Callbacks{
		Startup: func(interface{}) {
			log.Info("daemon starting", nil)
		},
		Reconfigure: func(interface{}) {
			log.Info("daemon reconfigure requested", nil)
		},
		Shutdown: func(interface{}) {
			log.Info("daemon shutting down", nil)
		},
	}, nil, cfg.ShutdownGrace.Time())
	if e != nil {
		return fmt.Errorf("initializing controller: %w", e)
	}

	var coll metrics.Collector
	if cfg.MetricsAddr != "" {
		coll = metrics.New("sockd")
		reg := prometheus.NewRegistry()
		if e = coll.Register(reg); e != nil {
			return fmt.Errorf("registering metrics: %w", e)
		}

		ln, e := net.Listen("tcp", cfg.MetricsAddr)
		if e != nil {
			return fmt.Errorf("starting metrics listener: %w", e)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			_ = http.Serve(ln, mux)
		}()

		go pollMetrics(ctx, ctrl, coll)
	}

	for _, l := range cfg.Listeners {
		if e = ctrl.AddUnix(l.Path, session.Callbacks{
			ReadSend: echoHandler,
		}, nil); e != nil {
			return fmt.Errorf("adding listener %q: %w", l.Name, e)
		}
	}

	return ctrl.Run(ctx, cfg.PidWatch)
}

// pollMetrics periodically snapshots each listener's live session count and
// cumulative accept/reject/soft-error counters into the metrics collector,
// since the controller does not push metrics itself (the framework core
// stays metrics-agnostic). Counters are monotonic snapshots, so each tick
// drives the collector's single-increment Inc* calls by the delta against
// the previous tick rather than the raw cumulative total.
func pollMetrics(ctx context.Context, ctrl daemon.Controller, coll metrics.Collector) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	prev := make(map[string]listener.Stats)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for path, n := range ctrl.SessionCounts() {
				coll.SetSessions(path, n)
			}

			for path, st := range ctrl.ListenerStats() {
				last := prev[path]

				for i := uint64(0); i < st.Accepted-last.Accepted; i++ {
					coll.IncAccepted(path)
				}
				for i := uint64(0); i < st.Rejected-last.Rejected; i++ {
					coll.IncRejected(path)
				}
				for i := uint64(0); i < st.AcceptErrors-last.AcceptErrors; i++ {
					coll.IncAcceptError(path)
				}

				prev[path] = st
			}
		}
	}
}

func echoHandler(s session.Session, buf []byte, _ interface{}) session.PendingRead {
	data := append([]byte(nil), buf...)
	ch := make(chan error, 1)

	go func() {
		op, e := s.WriteSend(data)
		if e != nil {
			ch <- e
			return
		}
		ch <- s.WriteRecv(op)
	}()

	return &pendingOp{ch: ch}
}

type pendingOp struct{ ch chan error }

func (p *pendingOp) Wait() error { return <-p.ch }
