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

// Package serializer writes command and API output as JSON, YAML or a
// flattened table.
//
// # Formats
//
// JSON: indented, for programmatic consumption and HTTP responses.
//
// YAML: for manifests and human review (gopkg.in/yaml.v3).
//
// Table: nested fields flattened to dotted keys, write-only.
//
// # Usage
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, refs); err != nil {
//	    return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, ref)
//
// RespondJSON encodes into a buffer before writing headers, so an encoding
// failure never produces a partial response.
package serializer
