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
	"io"
	"net"
	"os"
	"time"

	"github.com/dr0pdb/squeefdb/pkg/common"
)

// Handler services a single accepted connection. The connection is owned by the
// handler and must be closed before ServeConn returns.
type Handler interface {
	ServeConn(conn net.Conn) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(conn net.Conn) error

// ServeConn calls f(conn).
func (f HandlerFunc) ServeConn(conn net.Conn) error {
	return f(conn)
}

// EchoHandler reads one bounded message from the connection, prints it to the
// console and closes the connection. It is a placeholder until a wire protocol exists.
//
// The message is read with a single Read into a buffer of MaxMessageSize bytes:
//   - a message filling the buffer is rejected with ErrMessageTooLarge and not printed
//   - a peer closing without data gives ErrEmptyMessage
//   - any other read failure gives a StepError for StepRead
//
// There is exactly one Read. A message the peer sends in several segments may
// arrive partially; whatever the first Read returns is treated as the whole
// message and anything sent after it is discarded when the connection closes.
type EchoHandler struct {
	MaxMessageSize int
	ReadTimeout    time.Duration
	Console        io.Writer
}

var _ Handler = (*EchoHandler)(nil)

// NewEchoHandler creates an echo handler from the server config, printing to console.
func NewEchoHandler(conf *common.ServerConfig, console io.Writer) *EchoHandler {
	if console == nil {
		console = os.Stdout
	}
	return &EchoHandler{
		MaxMessageSize: conf.MaxMessageSize,
		ReadTimeout:    conf.ReadTimeout,
		Console:        console,
	}
}

// ServeConn implements Handler.
func (h *EchoHandler) ServeConn(conn net.Conn) error {
	defer conn.Close()

	if h.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(h.ReadTimeout)); err != nil {
			return &StepError{Step: StepRead, Err: err}
		}
	}

	buf := make([]byte, h.MaxMessageSize)
	n, err := conn.Read(buf)
	if n >= len(buf) {
		return fmt.Errorf("%w: reached the %d byte limit", ErrMessageTooLarge, len(buf))
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return &StepError{Step: StepRead, Err: err}
	}
	if n == 0 {
		return ErrEmptyMessage
	}

	// console output is best effort
	fmt.Fprintf(h.Console, "%s\n", buf[:n])
	return nil
}
