/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server accepts client connections on a tcp port and services them one at a time.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/dr0pdb/squeefdb/pkg/common"
	"github.com/dr0pdb/squeefdb/pkg/logger"
	log "github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Server.
type State int

const (
	// Created is the initial state. No socket is held.
	Created State = iota

	// Listening means the socket is bound and Run can accept connections.
	Listening

	// Stopped means the socket was released. The server cannot be restarted.
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Listening:
		return "listening"
	case Stopped:
		return "stopped"
	}

	panic("programming error: unexpected state in String() of State")
}

// StateObserver is notified after every state transition.
type StateObserver interface {
	StateChanged(state State)
}

// Server owns the listening socket and runs the accept loop.
// Connections are serviced synchronously: a slow handler delays every later connection.
type Server struct {
	mu       sync.Mutex
	conf     *common.ServerConfig
	loggers  logger.Sink
	handler  Handler
	observer StateObserver

	state    State
	listener net.Listener
	port     int
}

// Option configures a Server.
type Option func(*Server)

// WithHandler replaces the default echo handler.
func WithHandler(h Handler) Option {
	return func(s *Server) {
		s.handler = h
	}
}

// WithStateObserver registers an observer for state transitions.
func WithStateObserver(o StateObserver) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// New creates a server in the Created state. Messages are logged to loggers.
func New(conf *common.ServerConfig, loggers logger.Sink, opts ...Option) *Server {
	if conf == nil {
		conf = common.NewDefaultServerConfig()
	}
	if loggers == nil {
		loggers = logger.Discard
	}

	s := &Server{
		conf:    conf,
		loggers: loggers,
		state:   Created,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.handler == nil {
		s.handler = NewEchoHandler(conf, os.Stdout)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Port returns the bound port, or 0 when the server isn't listening.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Start binds the listening socket. On failure the error is logged, returned as a
// *StepError and the server stays in the Created state.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Created {
		s.loggers.Error(fmt.Sprintf("Cannot start server in state %s", s.state))
		return ErrInvalidState
	}

	s.loggers.Info("Starting server...")
	log.WithFields(log.Fields{"port": s.conf.Port, "backlog": s.conf.Backlog}).Debug("server::server::Start; started")

	l, err := listen(s.conf.Port, s.conf.Backlog)
	if err != nil {
		var se *StepError
		if errors.As(err, &se) {
			s.loggers.Error(se.logLine())
		} else {
			s.loggers.Error(err.Error())
		}
		return err
	}

	s.listener = l
	s.port = l.Addr().(*net.TCPAddr).Port
	s.setState(Listening)
	s.loggers.Info(fmt.Sprintf("Server started. Listening on port %d", s.port))

	log.WithFields(log.Fields{"port": s.port}).Debug("server::server::Start; done")
	return nil
}

// Run accepts connections until accepting fails, servicing each one before the next.
// It returns ErrNotListening when the server isn't listening, ErrServerClosed when
// Stop ended the loop and a *StepError for any other accept failure.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.state != Listening {
		s.mu.Unlock()
		s.loggers.Error("Cannot run server: not listening")
		return ErrNotListening
	}
	l := s.listener
	s.mu.Unlock()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) && s.State() == Stopped {
				log.Debug("server::server::Run; listener closed by Stop")
				return ErrServerClosed
			}

			se := &StepError{Step: StepAccept, Err: err}
			s.loggers.Error(se.logLine())
			return se
		}

		s.loggers.Info(fmt.Sprintf("Accepted connection from %s", conn.RemoteAddr()))
		s.serve(conn)
	}
}

// serve runs the handler to completion and logs its outcome.
func (s *Server) serve(conn net.Conn) {
	peer := conn.RemoteAddr().String()

	err := s.handler.ServeConn(conn)
	switch {
	case err == nil:
		s.loggers.Info(fmt.Sprintf("Connection from %s closed", peer))
	case errors.Is(err, ErrEmptyMessage):
		s.loggers.Warning(fmt.Sprintf("Connection from %s closed without data", peer))
	case errors.Is(err, ErrMessageTooLarge):
		s.loggers.Warning(fmt.Sprintf("Rejected message from %s: %v", peer, err))
	default:
		var se *StepError
		if errors.As(err, &se) {
			s.loggers.Warning(fmt.Sprintf("Connection from %s: %s", peer, se.logLine()))
			return
		}
		s.loggers.Warning(fmt.Sprintf("Connection from %s failed: %v", peer, err))
	}
}

// Stop releases the listening socket. It may be called in any state and more than once.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loggers.Info("Stopping server...")

	var err error
	if s.listener != nil {
		err = s.listener.Close()
		s.listener = nil
		s.port = 0
	}
	s.setState(Stopped)

	s.loggers.Info("Server stopped")
	return err
}

// must be called with the lock held
func (s *Server) setState(state State) {
	s.state = state
	if s.observer != nil {
		s.observer.StateChanged(state)
	}
}
