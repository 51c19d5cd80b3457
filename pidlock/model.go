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

package pidlock

import (
	"sync/atomic"

	"github.com/gofrs/flock"
)

type lck struct {
	path   string
	fl     *flock.Flock
	locked atomic.Bool
}

func newLock(path string) (Lock, error) {
	if path == "" {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	return &lck{
		path: path,
		fl:   flock.New(path),
	}, nil
}

func (l *lck) Path() string {
	return l.path
}

func (l *lck) TryLock() error {
	ok, e := l.fl.TryLock()
	if e != nil {
		return ErrorLockFailure.Error(e)
	}
	if !ok {
		return ErrorAlreadyRunning.Error(nil)
	}

	l.locked.Store(true)
	return nil
}

func (l *lck) Unlock() error {
	if !l.locked.CompareAndSwap(true, false) {
		return nil
	}

	if e := l.fl.Unlock(); e != nil {
		return ErrorNotLocked.Error(e)
	}
	return nil
}

func (l *lck) Locked() bool {
	return l.locked.Load()
}
