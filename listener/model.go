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

package listener

import (
	"context"
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	libctx "github.com/nabbar/sockd/context"
	"github.com/nabbar/sockd/logger"
	"github.com/nabbar/sockd/session"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

type lst struct {
	path string
	cb   session.Callbacks
	priv interface{}
	log  logger.FuncLog

	ln   net.Listener
	reg  libctx.Config[uint64]
	next atomic.Uint64

	started atomic.Bool
	closed  atomic.Bool
	done    chan struct{}
	err     atomic.Value // error

	accepted     atomic.Uint64
	rejected     atomic.Uint64
	acceptErrors atomic.Uint64
}

func newListener(path string, cb session.Callbacks, priv interface{}, removeBeforeUse bool, log logger.FuncLog) (Listener, error) {
	if cb.ReadSend == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	if len(path) > maxUnixSocketPathLen {
		return nil, ErrorPathTooLong.Error(nil)
	}

	if removeBeforeUse {
		_ = os.Remove(path)
	}

	fd, e := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if e != nil {
		return nil, ErrorSocketCreate.Error(e)
	}

	if e = unix.SetNonblock(fd, true); e != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketCreate.Error(e)
	}

	if e = unix.Bind(fd, &unix.SockaddrUnix{Name: path}); e != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketBind.Error(e)
	}

	if e = unix.Listen(fd, unixListenBacklog); e != nil {
		_ = unix.Close(fd)
		return nil, ErrorSocketListen.Error(e)
	}

	f := os.NewFile(uintptr(fd), path)
	ln, e := net.FileListener(f)
	_ = f.Close() // FileListener dup's the fd; release our copy
	if e != nil {
		return nil, ErrorSocketListen.Error(e)
	}

	return &lst{
		path: path,
		cb:   cb,
		priv: priv,
		log:  log,
		ln:   ln,
		reg:  libctx.New[uint64](context.Background()),
		done: make(chan struct{}),
	}, nil
}

func (l *lst) Path() string {
	return l.path
}

func (l *lst) logger() logger.Logger {
	if l.log == nil {
		return nil
	}
	return l.log()
}

func (l *lst) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrorAlreadyStarted.Error(nil)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = l.ln.Close()
		case <-l.done:
		}
	}()

	go l.acceptLoop()

	return nil
}

func (l *lst) acceptLoop() {
	backoff := minAcceptBackoff

	for {
		conn, e := l.ln.Accept()
		if e != nil {
			if l.closed.Load() || errors.Is(e, net.ErrClosed) {
				l.finish(nil)
				return
			}

			var ne net.Error
			if !errors.As(e, &ne) || ne.Temporary() {
				l.acceptErrors.Add(1)

				if lg := l.logger(); lg != nil {
					lg.Warning("accept failure, retrying", e)
				}

				time.Sleep(backoff)
				if backoff *= 2; backoff > maxAcceptBackoff {
					backoff = maxAcceptBackoff
				}
				continue
			}

			if lg := l.logger(); lg != nil {
				lg.Error("accept loop terminated", e)
			}
			l.finish(ErrorAcceptFailure.Error(e))
			return
		}

		backoff = minAcceptBackoff
		go l.spawnSession(conn)
	}
}

func (l *lst) spawnSession(conn net.Conn) {
	handle := l.next.Add(1)

	deregister := func() { l.reg.Delete(handle) }

	s, e := session.New(handle, conn, l.cb, l.priv, deregister, l.log)
	if e != nil {
		if lg := l.logger(); lg != nil {
			lg.Warning("session construction failed, closing fd", e)
		}
		_ = conn.Close()
		return
	}
	if s == nil {
		// rejected by OnConnect; session already closed conn itself.
		l.rejected.Add(1)
		return
	}

	l.accepted.Add(1)
	l.reg.Store(handle, s)
}

func (l *lst) finish(e error) {
	if e != nil {
		l.err.Store(e)
	}
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

func (l *lst) Done() <-chan struct{} {
	return l.done
}

func (l *lst) Err() error {
	if v := l.err.Load(); v != nil {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}

func (l *lst) SessionCount() int {
	n := 0
	l.reg.Walk(func(_ uint64, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (l *lst) Stats() Stats {
	return Stats{
		Accepted:     l.accepted.Load(),
		Rejected:     l.rejected.Load(),
		AcceptErrors: l.acceptErrors.Load(),
	}
}

func (l *lst) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrorAlreadyClosed.Error(nil)
	}

	_ = l.ln.Close()

	l.reg.Walk(func(_ uint64, v interface{}) bool {
		if s, ok := v.(session.Session); ok {
			_ = s.Close()
		}
		return true
	})
	l.reg.Clean()

	l.finish(nil)

	_ = os.Remove(l.path)

	return nil
}
