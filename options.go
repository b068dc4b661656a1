// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"github.com/sirupsen/logrus"
)

type options struct {
	log           logrus.FieldLogger
	backend       string
	name          string
	echoFunctions bool
	echoData      bool
}

// An Option configures a Circuit.
//
type Option func(*options)

// WithLogger sets the logger of a circuit. The default is
// logrus.StandardLogger().
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithBackend selects the backend: BackendAuto (the default) tries the bytecode
// backend and falls back to the interpreter; BackendBytecode fails if the
// bytecode backend cannot be used.
//
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithName sets the circuit name used in logs and metrics. The default is the
// name of the root element.
//
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithEcho enables diagnostic logging: functions logs the compiled program and
// modulo operations on creation, data logs the arena after every Step.
//
func WithEcho(functions, data bool) Option {
	return func(o *options) {
		o.echoFunctions = functions
		o.echoData = data
	}
}
