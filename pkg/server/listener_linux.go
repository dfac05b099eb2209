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

//go:build linux

package server

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listen creates a tcp socket bound to 0.0.0.0:port and puts it in listening mode.
// Every step is done separately so that a failure can be attributed to it.
func listen(port, backlog int) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, &StepError{Step: StepSocket, Err: err}
	}

	// same as net.Listen
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, &StepError{Step: StepSocket, Err: err}
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return nil, &StepError{Step: StepBind, Err: err}
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, &StepError{Step: StepListen, Err: err}
	}

	// FileListener dups the descriptor, the original is closed with f.
	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp:0.0.0.0:%d", port))
	defer f.Close()

	l, err := net.FileListener(f)
	if err != nil {
		return nil, &StepError{Step: StepListen, Err: err}
	}
	return l, nil
}
