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

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector carries every metric sockd exposes and registers them against
// a caller-supplied prometheus.Registerer.
type Collector interface {
	// Register attaches every collector to reg. Safe to call once per
	// Collector instance.
	Register(reg prometheus.Registerer) error

	// SetSessions records the current live-session count for the
	// listener bound at path.
	SetSessions(path string, n int)

	// IncAccepted counts one accepted connection on the listener bound
	// at path.
	IncAccepted(path string)

	// IncRejected counts one connection rejected by OnConnect on the
	// listener bound at path.
	IncRejected(path string)

	// IncAcceptError counts one soft (retried) accept error on the
	// listener bound at path.
	IncAcceptError(path string)
}

// New builds a Collector. namespace prefixes every metric name
// (e.g. "sockd" yields "sockd_listener_sessions").
func New(namespace string) Collector {
	return newCollector(namespace)
}
