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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	host    = flag.String("host", "127.0.0.1", "server host")
	port    = flag.Int("port", 6870, "server port")
	message = flag.String("message", "", "message to send; read from stdin when empty")
)

func main() {
	flag.Parse()

	msg := *message
	if msg == "" {
		fmt.Printf("squeef> ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("squeef::main::main; cannot read message: %v", err)
		}
		msg = strings.TrimRight(line, "\r\n")
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		log.Fatalf("squeef::main::main; cannot connect to %s: %v", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(msg)); err != nil {
		log.Errorf("squeef::main::main; write failed: %v", err)
		return
	}
	log.WithFields(log.Fields{"address": addr, "bytes": len(msg)}).Info("squeef::main::main; message sent")
}
