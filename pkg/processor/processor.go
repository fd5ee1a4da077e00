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

package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/processor/checksum"
	"github.com/NVIDIA/assetpipe/pkg/processor/config"
	"github.com/NVIDIA/assetpipe/pkg/processor/result"
	"github.com/NVIDIA/assetpipe/pkg/serializer"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Processor builds every bundle variant ahead of time and writes the
// results to a directory.
type Processor struct {
	handler *handler.Handler
	config  *config.Config
}

// Option defines a functional option for configuring a Processor.
type Option func(*Processor)

// WithConfig sets the build configuration.
func WithConfig(cfg *config.Config) Option {
	return func(p *Processor) {
		if cfg != nil {
			p.config = cfg
		}
	}
}

// New creates a Processor building the bundles of h.
func New(h *handler.Handler, opts ...Option) (*Processor, error) {
	if h == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "handler cannot be nil")
	}
	p := &Processor{
		handler: h,
		config:  config.NewConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid build configuration", err)
	}
	return p, nil
}

type task struct {
	bundle *bundle.Joinable
	tuple  variant.Tuple
}

// Run builds every variant of every bundle of the current epoch into dir:
//
//	<dir>/<fingerprint>/<variantKey>/<bundleID>      bundle content
//	<dir>/<fingerprint>/<variantKey>/<bundleID>.gz   gzip copy
//	<dir>/manifest.yaml                              bundle references
//	<dir>/checksums.txt                              SHA256 of the files above
//
// Failed variants are recorded in the output. With fail fast set the
// first failure cancels the remaining builds and is returned.
func (p *Processor) Run(ctx context.Context, dir string) (*result.Output, error) {
	start := time.Now()
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create output directory", err)
	}

	e := p.handler.Epoch()
	var tasks []task
	for _, j := range e.Registry().List() {
		if j.IsAlternate() {
			continue
		}
		for _, t := range j.Tuples() {
			tasks = append(tasks, task{bundle: j, tuple: t})
		}
	}

	slog.Debug("starting offline build",
		"bundles", e.Registry().Count(),
		"variants", len(tasks),
		"concurrency", p.config.Concurrency(),
		"output_dir", dir)

	output := &result.Output{
		Results:   make([]*result.Result, len(tasks)),
		Errors:    make([]result.BuildError, 0),
		OutputDir: dir,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency())
	for i, tk := range tasks {
		g.Go(func() error {
			res, err := p.build(gctx, e, dir, tk)
			output.Results[i] = res
			if err == nil {
				return nil
			}
			mu.Lock()
			output.Errors = append(output.Errors, result.BuildError{
				BundleID:   tk.bundle.ID,
				VariantKey: tk.tuple.Key(),
				Error:      err.Error(),
			})
			mu.Unlock()
			if p.config.FailFast() {
				return err
			}
			return nil
		})
	}
	err := g.Wait()

	var files []string
	for _, res := range output.Results {
		if res == nil || !res.Success {
			continue
		}
		output.TotalSize += res.Size
		output.TotalFiles += len(res.Files)
		files = append(files, res.Files...)
	}

	if err != nil {
		output.TotalDuration = time.Since(start)
		return output, errors.Wrap(errors.ErrCodeInternal, "bundle build failed", err)
	}

	manifest, err := p.writeManifest(ctx, e, dir, output)
	if err != nil {
		return output, err
	}
	output.Manifest = manifest
	files = append(files, manifest)

	if p.config.IncludeChecksums() {
		sums, err := checksum.Generate(ctx, dir, files)
		if err != nil {
			return output, err
		}
		output.Checksums = sums
	}

	output.TotalDuration = time.Since(start)
	if output.HasErrors() {
		slog.Warn("offline build completed with errors",
			"failed", len(output.Errors),
			"bundles", output.FailedBundles())
	}
	slog.Debug("offline build complete", "summary", output.Summary())
	return output, nil
}

func (p *Processor) build(ctx context.Context, e *handler.Epoch, dir string, tk task) (*result.Result, error) {
	start := time.Now()
	j := tk.bundle
	res := result.New(j.ID, tk.tuple.Key())
	defer func() { res.Duration = time.Since(start) }()

	entry, err := e.Engine().GetOrBuild(ctx, j.ID, tk.tuple)
	if err != nil {
		res.AddError(err)
		return res, err
	}
	res.Fingerprint = entry.Fingerprint
	res.URL = e.URL(j, entry.Fingerprint, entry.VariantKey)

	path := OutputPath(dir, entry.Fingerprint, entry.VariantKey, j.ID)
	if err := writeFile(path, entry.Text); err != nil {
		res.AddError(err)
		return res, err
	}
	res.AddFile(path, int64(len(entry.Text)))

	if p.config.Compression() {
		if err := writeFile(path+".gz", entry.Gzip); err != nil {
			res.AddError(err)
			return res, err
		}
		res.AddFile(path+".gz", int64(len(entry.Gzip)))
	}

	res.MarkSuccess()
	if p.config.Verbose() {
		slog.Info("bundle written", "bundle", j.ID, "variant", entry.VariantKey, "path", path)
	}
	return res, nil
}

// OutputPath returns the file a bundle variant is written to.
func OutputPath(dir, fingerprint, variantKey, id string) string {
	return filepath.Join(dir, fingerprint, variantKey, filepath.FromSlash(strings.TrimPrefix(id, "/")))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to create directory", err, map[string]any{"path": path})
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // build output is public content
		return errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to write bundle", err, map[string]any{"path": path})
	}
	return nil
}

func (p *Processor) writeManifest(ctx context.Context, e *handler.Epoch, dir string, output *result.Output) (string, error) {
	m := NewManifest(e, p.config.Version(), output)
	path := filepath.Join(dir, p.config.ManifestFileName())

	w, err := serializer.NewFileWriter(serializer.Format(p.config.ManifestFormat()), path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to create manifest", err)
	}
	if err := w.Serialize(ctx, m); err != nil {
		_ = w.Close()
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to close %s", path), err)
	}
	return path, nil
}
