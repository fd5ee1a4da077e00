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

// Package config loads the pipeline configuration.
//
// A configuration file is YAML, or JSON with comments when its name ends
// in .json or .jsonc:
//
//	charset: UTF-8
//	contextPath: /bundles
//	baseDir: ./webapp
//	variants:
//	  locale:
//	    cookie: lang
//	    default: en
//	postProcessors:
//	  css:
//	    unit: [cssurl, cssminify]
//	bundles:
//	  - id: /js/app.js
//	    global: true
//	    mappings: [/js/lib/**, "messages:app.Messages(msg)"]
//
// The ASSETPIPE_DEBUG, ASSETPIPE_BASE_DIR and ASSETPIPE_CONTEXT_PATH
// environment variables override the file.
package config
