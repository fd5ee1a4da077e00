// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bundle cache metrics
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assetpipe_bundle_cache_hits_total",
			Help: "Total number of bundle requests served from the cache",
		},
	)
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assetpipe_bundle_cache_misses_total",
			Help: "Total number of bundle requests with a missing or stale entry",
		},
	)

	// Bundle build metrics
	bundleBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetpipe_bundle_builds_total",
			Help: "Total number of bundle builds by result",
		},
		[]string{"result"},
	)
	bundleBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assetpipe_bundle_build_duration_seconds",
			Help:    "Duration of bundle builds in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)
