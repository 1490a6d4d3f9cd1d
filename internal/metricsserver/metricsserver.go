// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metricsserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer interface {
	Start() error
	Stop()
	// Addr is nil when the server is disabled
	Addr() net.Addr
}

var _ MetricsServer = &metricsServer{}

type metricsServer struct {
	ctx             context.Context
	cancelCtx       func()
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	shutdownTimeout time.Duration
	started         bool
}

// NewMetricsServer binds the listener immediately, so a port clash is reported before any
// transactions are submitted. A disabled server is a no-op.
func NewMetricsServer(ctx context.Context, registry *prometheus.Registry, mc *conf.MetricsConfig) (_ MetricsServer, err error) {
	s := &metricsServer{
		httpServerDone:  make(chan error),
		shutdownTimeout: confutil.DurationMin(mc.ShutdownTimeout, 0, *conf.Defaults.Metrics.ShutdownTimeout),
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)
	if !confutil.Bool(mc.Enabled, *conf.Defaults.Metrics.Enabled) {
		return s, nil
	}

	listenAddr := fmt.Sprintf("%s:%d",
		confutil.StringNotEmpty(mc.Address, *conf.Defaults.Metrics.Address),
		confutil.Int(mc.Port, *conf.Defaults.Metrics.Port))
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgMetricsServerFailed, listenAddr)
	}
	log.L(ctx).Infof("Metrics server listening on %s", s.listener.Addr())

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.httpServer = &http.Server{
		Handler:           s.withLog(r),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *metricsServer) withLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		log.L(s.ctx).Debugf("--> %s %s (metrics)", req.Method, req.URL.Path)
		handler.ServeHTTP(res, req)
		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		log.L(s.ctx).Debugf("<-- %s %s (%.2fms)", req.Method, req.URL.Path, durationMS)
	})
}

func (s *metricsServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *metricsServer) Start() error {
	if s.httpServer == nil {
		return nil
	}
	s.started = true
	go func() {
		s.httpServerDone <- s.httpServer.Serve(s.listener)
	}()
	return nil
}

func (s *metricsServer) Stop() {
	if !s.started {
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.cancelCtx()
		return
	}
	log.L(s.ctx).Infof("Metrics server shutting down")
	shutdownCtx, cancel := context.WithTimeout(s.ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.L(s.ctx).Warnf("Metrics server terminating after waiting %s for shutdown", s.shutdownTimeout)
		_ = s.httpServer.Close()
	}
	s.cancelCtx()
	err := <-s.httpServerDone
	log.L(s.ctx).Infof("Metrics server ended (err=%v)", err)
	s.started = false
}
