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
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// HealthService is the service name reported by the health server.
const HealthService = "squeef"

// HealthServer exposes the standard grpc health service on its own port.
// The squeef service is SERVING while the observed Server is listening.
type HealthServer struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
}

var _ StateObserver = (*HealthServer)(nil)

// NewHealthServer creates a health server that will listen on address.
func NewHealthServer(address string) *HealthServer {
	var alivePolicy = keepalive.EnforcementPolicy{
		MinTime:             2 * time.Second, // If a client pings more than once every 2 seconds, terminate the connection
		PermitWithoutStream: true,            // Allow pings even when there are no active streams
	}

	grpcServer := grpc.NewServer(grpc.KeepaliveEnforcementPolicy(alivePolicy))
	hs := health.NewServer()
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)

	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return &HealthServer{
		address:    address,
		grpcServer: grpcServer,
		health:     hs,
	}
}

// StateChanged implements StateObserver.
func (h *HealthServer) StateChanged(state State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state == Listening {
		status = healthpb.HealthCheckResponse_SERVING
	}
	log.WithFields(log.Fields{"state": state, "status": status}).Debug("server::health::StateChanged; updating status")
	h.health.SetServingStatus(HealthService, status)
}

// Start listens on the configured address and serves in the background.
func (h *HealthServer) Start() error {
	l, err := net.Listen("tcp", h.address)
	if err != nil {
		return err
	}
	h.listener = l

	go func() {
		if err := h.grpcServer.Serve(l); err != nil {
			log.Error("server::health::Start; grpc server exited: ", err)
		}
	}()

	log.WithFields(log.Fields{"address": l.Addr().String()}).Info("server::health::Start; serving")
	return nil
}

// Addr returns the address the health server listens on, nil before Start.
func (h *HealthServer) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Stop marks every service as not serving and stops the grpc server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpcServer.Stop()
}
