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

// Package resource abstracts reading asset content by logical path.
//
// A Reader exposes existence checks, text and byte reads, directory
// listings and change-detection tokens. FSStore implements Reader over any
// go-billy filesystem: NewDirStore reads from disk and NewMemStore keeps
// content in memory. Composite layers several readers with first-match-wins
// precedence.
//
// Tokens are blake3 content hashes unless WithModTimeTokens is set, in which
// case they combine size and modification time.
//
// Misses are reported as NOT_FOUND structured errors; use IsNotFound to test.
package resource
