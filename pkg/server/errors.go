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

package server

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned by Start when the server was already started or stopped.
	ErrInvalidState = errors.New("invalid server state")

	// ErrNotListening is returned by Run when Start did not succeed.
	ErrNotListening = errors.New("server is not listening")

	// ErrServerClosed is returned by Run after Stop closed the listener.
	ErrServerClosed = errors.New("server closed")

	// ErrMessageTooLarge is returned by the echo handler when a message fills the whole read buffer.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrEmptyMessage is returned by the echo handler when the peer closed without sending anything.
	ErrEmptyMessage = errors.New("empty message")
)

// Step identifies the socket operation that failed.
type Step int

const (
	StepSocket Step = iota
	StepBind
	StepListen
	StepAccept
	StepRead
)

func (s Step) String() string {
	switch s {
	case StepSocket:
		return "socket"
	case StepBind:
		return "bind"
	case StepListen:
		return "listen"
	case StepAccept:
		return "accept"
	case StepRead:
		return "read"
	}

	panic("programming error: unexpected step in String() of Step")
}

// StepError is a failed socket operation together with the underlying os error.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// logLine is the message logged for the failure.
func (e *StepError) logLine() string {
	switch e.Step {
	case StepSocket:
		return fmt.Sprintf("Failed to create socket. Errno %v", e.Err)
	case StepBind:
		return fmt.Sprintf("Failed to bind socket. Errno %v", e.Err)
	case StepListen:
		return fmt.Sprintf("Failed to start listening. Errno %v", e.Err)
	case StepAccept:
		return fmt.Sprintf("Failed to accept incoming connection. Errno %v", e.Err)
	default:
		return fmt.Sprintf("Failed to read from connection. Errno %v", e.Err)
	}
}
