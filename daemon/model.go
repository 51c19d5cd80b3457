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

package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabbar/sockd/listener"
	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/pidlock"
	"github.com/nabbar/sockd/session"
)

type ctl struct {
	name string
	log  logger.FuncLog
	lock pidlock.Lock
	cb   Callbacks
	priv interface{}

	mu        sync.Mutex
	listeners []listener.Listener

	shutdownGrace time.Duration

	started atomic.Bool
	state   atomic.Uint32
	once    sync.Once
	finErr  atomic.Value // error
	cancel  context.CancelFunc
}

func newController(name string, log logger.FuncLog, lock pidlock.Lock, cb Callbacks, priv interface{}, shutdownGrace ...time.Duration) (Controller, error) {
	if name == "" {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	if lock != nil {
		if e := lock.TryLock(); e != nil {
			return nil, e
		}
	}

	var grace time.Duration
	if len(shutdownGrace) > 0 {
		grace = shutdownGrace[0]
	}

	return &ctl{
		name:          name,
		log:           log,
		lock:          lock,
		cb:            cb,
		priv:          priv,
		shutdownGrace: grace,
	}, nil
}

func (o *ctl) logger() logger.Logger {
	if o.log == nil {
		return nil
	}
	return o.log()
}

func (o *ctl) State() State {
	return State(o.state.Load())
}

func (o *ctl) SessionCounts() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()

	m := make(map[string]int, len(o.listeners))
	for _, l := range o.listeners {
		m[l.Path()] = l.SessionCount()
	}

	return m
}

func (o *ctl) ListenerStats() map[string]listener.Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	m := make(map[string]listener.Stats, len(o.listeners))
	for _, l := range o.listeners {
		m[l.Path()] = l.Stats()
	}

	return m
}

func (o *ctl) AddUnix(path string, cb session.Callbacks, priv interface{}) error {
	removeBeforeUse := o.lock != nil

	l, e := listener.New(path, cb, priv, removeBeforeUse, o.log)
	if e != nil {
		return ErrorListenerSetup.Error(e)
	}

	o.mu.Lock()
	o.listeners = append(o.listeners, l)
	o.mu.Unlock()

	return nil
}

func (o *ctl) Run(ctx context.Context, pidWatch int) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrorAlreadyRunning.Error(nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	defer cancel()

	if o.cb.Startup != nil {
		o.cb.Startup(o.priv)
	}
	o.state.Store(uint32(StateRunning))

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		o.signalLoop(gctx)
		return nil
	})

	o.mu.Lock()
	lsnrs := append([]listener.Listener(nil), o.listeners...)
	o.mu.Unlock()

	for _, l := range lsnrs {
		l := l
		if e := l.Start(gctx); e != nil {
			o.shutdown(ErrorListenerSetup.Error(e))
			continue
		}
		g.Go(func() error {
			o.watchListener(gctx, l)
			return nil
		})
	}

	if pidWatch > 1 {
		pid := pidWatch
		g.Go(func() error {
			o.watchPid(gctx, pid)
			return nil
		})
	}

	_ = g.Wait()

	o.shutdown(nil)

	if v := o.finErr.Load(); v != nil {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}

func (o *ctl) signalLoop(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	for {
		select {
		case sig := <-quit:
			switch sig {
			case syscall.SIGHUP, syscall.SIGUSR1:
				if o.State() == StateShuttingDown || o.State() == StateTerminal {
					continue
				}
				if o.cb.Reconfigure != nil {
					o.cb.Reconfigure(o.priv)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				o.shutdown(ErrorInterrupted.Error(nil))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (o *ctl) watchListener(ctx context.Context, l listener.Listener) {
	select {
	case <-l.Done():
		if e := l.Err(); e != nil {
			if lg := o.logger(); lg != nil {
				lg.Error("listener failed, shutting down", e)
			}
			o.shutdown(ErrorListenerFailure.Error(e))
		}
	case <-ctx.Done():
	}
}

func (o *ctl) watchPid(ctx context.Context, pid int) {
	t := time.NewTimer(time.Second)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			if e := syscall.Kill(pid, syscall.Signal(0)); e != nil {
				o.shutdown(ErrorPidGone.Error(e))
				return
			}
			t.Reset(5 * time.Second)
		case <-ctx.Done():
			return
		}
	}
}

func (o *ctl) shutdown(cause error) {
	o.once.Do(func() {
		o.state.Store(uint32(StateShuttingDown))
		if cause != nil {
			o.finErr.Store(cause)
		}

		o.mu.Lock()
		lsnrs := append([]listener.Listener(nil), o.listeners...)
		o.mu.Unlock()

		closed := make(chan struct{})
		go func() {
			for _, l := range lsnrs {
				_ = l.Close()
			}
			close(closed)
		}()

		if o.shutdownGrace > 0 {
			select {
			case <-closed:
			case <-time.After(o.shutdownGrace):
				if lg := o.logger(); lg != nil {
					lg.Warning("shutdown grace period elapsed, proceeding without waiting on listener teardown", nil)
				}
			}
		} else {
			<-closed
		}

		if o.cb.Shutdown != nil {
			o.cb.Shutdown(o.priv)
		}

		if o.lock != nil {
			_ = o.lock.Unlock()
		}

		o.state.Store(uint32(StateTerminal))

		if o.cancel != nil {
			o.cancel()
		}
	})
}
