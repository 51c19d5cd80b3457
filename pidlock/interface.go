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

// Lock is an exclusive, process-wide file lock anchored at a filesystem
// path. It is safe to call Unlock more than once.
type Lock interface {
	// Path returns the lock file's path.
	Path() string

	// TryLock attempts to acquire the lock without blocking. When another
	// process already holds it, ErrorAlreadyRunning is returned.
	TryLock() error

	// Unlock releases the lock. Idempotent.
	Unlock() error

	// Locked reports whether this instance currently holds the lock.
	Locked() bool
}

// New returns a Lock anchored at path. The file is created on first
// successful TryLock if it does not already exist.
func New(path string) (Lock, error) {
	return newLock(path)
}
