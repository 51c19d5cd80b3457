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

package config

import (
	libvpr "github.com/spf13/viper"

	"github.com/nabbar/sockd/duration"
	"github.com/nabbar/sockd/file/perm"
	liberr "github.com/nabbar/sockd/errors"
	logcfg "github.com/nabbar/sockd/logger/config"
)

// ListenerConfig describes one unix socket the daemon controller will
// serve. Name identifies it for the application's callback-wiring (which
// handler set to attach); it carries no meaning for the framework itself.
type ListenerConfig struct {
	Name string    `json:"name" yaml:"name" toml:"name" mapstructure:"name" validate:"required"`
	Path string    `json:"path" yaml:"path" toml:"path" mapstructure:"path" validate:"required"`
	Perm perm.Perm `json:"perm,omitempty" yaml:"perm,omitempty" toml:"perm,omitempty" mapstructure:"perm,omitempty"`
}

// Options is the complete, validated shape of a daemon's configuration
// file.
type Options struct {
	// Name is the daemon's process name, used for logging context.
	Name string `json:"name" yaml:"name" toml:"name" mapstructure:"name" validate:"required"`

	// Listeners is the set of unix sockets to serve. At least one is
	// required.
	Listeners []ListenerConfig `json:"listeners" yaml:"listeners" toml:"listeners" mapstructure:"listeners" validate:"required,min=1,dive"`

	// PidFile is the optional exclusive PID-lock file path. Empty
	// disables the singleton guard.
	PidFile string `json:"pidFile,omitempty" yaml:"pidFile,omitempty" toml:"pidFile,omitempty" mapstructure:"pidFile,omitempty"`

	// PidWatch is an external process id to poll for liveness; values
	// <= 1 disable the poller.
	PidWatch int `json:"pidWatch,omitempty" yaml:"pidWatch,omitempty" toml:"pidWatch,omitempty" mapstructure:"pidWatch,omitempty"`

	// ShutdownGrace bounds how long the daemon controller waits for its
	// listeners to close during shutdown before it stops waiting and goes
	// on with the application Shutdown callback and PID-lock release.
	// Zero waits without bound.
	ShutdownGrace duration.Duration `json:"shutdownGrace,omitempty" yaml:"shutdownGrace,omitempty" toml:"shutdownGrace,omitempty" mapstructure:"shutdownGrace,omitempty"`

	// Logging configures the logging subsystem shared by every
	// component of the daemon.
	Logging *logcfg.Options `json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging,omitempty" mapstructure:"logging,omitempty"`

	// MetricsAddr, if non-empty, is the tcp address a prometheus
	// "/metrics" endpoint is served on. Empty disables metrics
	// exposition entirely.
	MetricsAddr string `json:"metricsAddr,omitempty" yaml:"metricsAddr,omitempty" toml:"metricsAddr,omitempty" mapstructure:"metricsAddr,omitempty"`
}

// Validate checks the struct-tag constraints only. Listener callbacks are
// not part of the configuration; their presence is checked later, when
// the listener is built by daemon.AddUnix.
func (o *Options) Validate() liberr.Error {
	return validate(o)
}

// Clone returns a deep copy safe for independent mutation.
func (o *Options) Clone() Options {
	lst := make([]ListenerConfig, len(o.Listeners))
	copy(lst, o.Listeners)

	var lg *logcfg.Options
	if o.Logging != nil {
		c := o.Logging.Clone()
		lg = &c
	}

	return Options{
		Name:          o.Name,
		Listeners:     lst,
		PidFile:       o.PidFile,
		PidWatch:      o.PidWatch,
		ShutdownGrace: o.ShutdownGrace,
		Logging:       lg,
		MetricsAddr:   o.MetricsAddr,
	}
}

// Load reads configuration from v into a new Options value and validates
// it. v is expected to already have its config file/paths/env bindings
// set up by the caller (typically cmd/sockd's cobra+viper wiring).
func Load(v *libvpr.Viper) (*Options, error) {
	return load(v)
}
