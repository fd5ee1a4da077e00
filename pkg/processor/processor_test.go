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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/assetpipe/pkg/bundle"
	appconfig "github.com/NVIDIA/assetpipe/pkg/config"
	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/header"
	"github.com/NVIDIA/assetpipe/pkg/processor/checksum"
	"github.com/NVIDIA/assetpipe/pkg/processor/config"
	"github.com/NVIDIA/assetpipe/pkg/processor/result"
)

func newHandler(t *testing.T, defs ...bundle.Definition) *handler.Handler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"js/a.js":                    "var a = 1;\n",
		"css/site.css":               "a { color : red ; }\n",
		"app/Messages.properties":    "greeting=Hello\n",
		"app/Messages_es.properties": "greeting=Hola\n",
		"app/Messages_fr.properties": "greeting=Bonjour\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	if len(defs) == 0 {
		defs = []bundle.Definition{
			{ID: "/js/app.js", Global: true, Mappings: []string{"/js/a.js", "messages:app.Messages"}},
			{ID: "/css/site.css", Mappings: []string{"/css/"}},
			{ID: "/js/cdn.js", AlternateURL: "https://cdn.example.com/lib.js"},
		}
	}
	cfg := &appconfig.Config{BaseDir: dir, Bundles: defs}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	h, err := handler.New(context.Background(), cfg)
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)

	_, err = New(newHandler(t), WithConfig(config.NewConfig(config.WithConcurrency(0))))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	p, err := New(h, WithConfig(config.NewConfig(config.WithConcurrency(2))))
	require.NoError(t, err)

	out := t.TempDir()
	output, err := p.Run(context.Background(), out)
	require.NoError(t, err)

	// three locale variants of app.js plus site.css
	require.Len(t, output.Results, 4)
	assert.False(t, output.HasErrors())
	assert.Equal(t, 4, output.SuccessCount())
	assert.Equal(t, 8, output.TotalFiles)

	for _, res := range output.Results {
		require.True(t, res.Success, res.Errors)
		path := OutputPath(out, res.Fingerprint, res.VariantKey, res.BundleID)
		assert.FileExists(t, path)
		assert.FileExists(t, path+".gz")
	}

	es := OutputPath(out, fingerprintOf(t, output.ByBundle()["/js/app.js"], "es"), "es", "/js/app.js")
	data, err := os.ReadFile(es)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hola")

	require.NoError(t, checksum.Verify(context.Background(), out))

	raw, err := os.ReadFile(filepath.Join(out, "manifest.yaml"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(raw, &m))
	assert.Equal(t, header.KindBundleManifest, m.Kind)
	assert.Equal(t, header.APIVersion, m.APIVersion)
	assert.Equal(t, "/bundles", m.ContextPath)
	require.Len(t, m.Bundles, 3)
	assert.Equal(t, "/js/app.js", m.Bundles[0].ID)
	assert.Len(t, m.Bundles[0].Variants, 3)
	assert.Equal(t, "https://cdn.example.com/lib.js", m.Bundles[2].AlternateURL)
	assert.Empty(t, m.Bundles[2].Variants)

	for _, v := range m.Bundles[0].Variants {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(v.File)))
		assert.Contains(t, v.URL, v.Fingerprint)
	}
}

func fingerprintOf(t *testing.T, results []*result.Result, key string) string {
	t.Helper()
	for _, r := range results {
		if r.VariantKey == key {
			return r.Fingerprint
		}
	}
	t.Fatalf("no result for variant %q", key)
	return ""
}

func TestRunWithoutExtras(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	p, err := New(h, WithConfig(config.NewConfig(
		config.WithCompression(false),
		config.WithIncludeChecksums(false),
		config.WithManifestFormat(config.ManifestJSON),
	)))
	require.NoError(t, err)

	out := t.TempDir()
	output, err := p.Run(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, 4, output.TotalFiles)
	assert.Empty(t, output.Checksums)
	assert.NoFileExists(t, checksum.Path(out))
	assert.FileExists(t, filepath.Join(out, "manifest.json"))
	assert.Equal(t, filepath.Join(out, "manifest.json"), output.Manifest)
}

func TestRunRecordsFailures(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	p, err := New(h)
	require.NoError(t, err)

	// Removing a member after the bundles were built makes its bundle fail.
	cfg := h.Epoch().Config()
	require.NoError(t, os.Remove(filepath.Join(cfg.BaseDir, "css", "site.css")))

	output, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, output.HasErrors())
	assert.Equal(t, []string{"/css/site.css"}, output.FailedBundles())
	assert.Equal(t, 3, output.SuccessCount())

	failFast, err := New(h, WithConfig(config.NewConfig(config.WithFailFast(true))))
	require.NoError(t, err)
	_, err = failFast.Run(context.Background(), t.TempDir())
	require.Error(t, err)
}
