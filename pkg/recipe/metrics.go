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

package recipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recipe generation metrics
	recipeBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "containerize_recipe_build_duration_seconds",
			Help:    "Duration of recipe generation in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)
	recipesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "containerize_recipes_generated_total",
			Help: "Total number of recipes generated",
		},
		[]string{"format", "last_stage"},
	)
	recipeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "containerize_recipe_failures_total",
			Help: "Total number of failed recipe generations",
		},
		[]string{"reason"},
	)
)

// Failure reasons recorded by recipeFailures.
const (
	failureUnknownOS     = "unknown_os"
	failureInvalidConfig = "invalid_config"
	failureCanceled      = "canceled"
	failureRender        = "render"
)
