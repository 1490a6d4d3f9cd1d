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

package ethclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/sirupsen/logrus"
)

type reqStartCtxKey struct{}

// NewRESTClient builds the resty client used for JSON-RPC. Connections are kept alive
// between calls so that per-transaction latency does not include TCP/TLS setup.
func NewRESTClient(ctx context.Context, hc *conf.HTTPClientConfig) (*resty.Client, error) {
	u, err := url.Parse(hc.URL)
	if hc.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCEndpointMissing)
	}

	connTimeout := confutil.DurationMin(hc.ConnectionTimeout, 0, *conf.Defaults.RPC.ConnectionTimeout)
	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: connTimeout,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 10,
	}

	client := resty.NewWithClient(&http.Client{Transport: httpTransport})
	baseURL := strings.TrimSuffix(hc.URL, "/")
	client.SetBaseURL(baseURL)
	client.SetTimeout(confutil.DurationMin(hc.RequestTimeout, 0, *conf.Defaults.RPC.RequestTimeout))

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		rCtx := context.WithValue(req.Context(), reqStartCtxKey{}, time.Now())
		req.SetContext(rCtx)
		log.L(rCtx).Tracef("==> %s %s", req.Method, baseURL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		rCtx := resp.Request.Context()
		level := logrus.TraceLevel
		if resp.StatusCode() >= 300 {
			level = logrus.ErrorLevel
		}
		var elapsed time.Duration
		if start, ok := rCtx.Value(reqStartCtxKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		log.L(rCtx).Logf(level, "<== %s %s [%d] (%dms)", resp.Request.Method, baseURL, resp.StatusCode(), elapsed.Milliseconds())
		return nil
	})

	log.L(ctx).Debugf("Created JSON-RPC client to %s", baseURL)
	return client, nil
}
