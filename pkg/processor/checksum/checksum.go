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

package checksum

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/errors"
)

// FileName is the name of the checksum file written into a build directory.
const FileName = "checksums.txt"

// Generate writes a checksums.txt file into dir holding the SHA256 checksum
// of every file, in the format of sha256sum. Paths are written relative to
// dir with forward slashes and sorted. It returns the path of the checksum
// file.
func Generate(ctx context.Context, dir string, files []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "context cancelled", err)
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		sum, err := fileSum(file)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", sum, filepath.ToSlash(rel)))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i][66:] < lines[j][66:] })

	path := Path(dir)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to write checksums", err, map[string]any{"path": path})
	}

	slog.Debug("checksums generated", "file_count", len(lines), "path", path)
	return path, nil
}

// Verify checks every entry of the checksums.txt file in dir against the
// files on disk.
func Verify(ctx context.Context, dir string) error {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeNotFound,
			"failed to read checksums", err, map[string]any{"dir": dir})
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "context cancelled", err)
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		want, rel, ok := strings.Cut(line, "  ")
		if !ok {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("malformed checksum line %d", n), map[string]any{"line": line})
		}
		got, err := fileSum(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if got != want {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"checksum mismatch for "+rel, map[string]any{"file": rel, "want": want, "got": got})
		}
	}
	return sc.Err()
}

// Path returns the path of the checksum file in dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

func fileSum(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to read file for checksum", err, map[string]any{"file": file})
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
