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

// Package errors provides structured error types for better observability
// and programmatic error handling across the pipeline.
//
// Configuration-time failures (duplicate bundle identifiers, composition
// cycles, unresolvable mappings) abort the whole build and always carry the
// offending bundle identifier and mapping in their context:
//
//	err := errors.NewWithContext(
//	    errors.ErrCodeDuplicateBundle,
//	    "bundle identifier defined more than once",
//	    map[string]any{
//	        "bundle": "/js/app.js",
//	    },
//	)
//
// Use IsCode to test for a classification anywhere in a wrapped chain:
//
//	if errors.IsCode(err, errors.ErrCodeNotFound) { ... }
package errors
