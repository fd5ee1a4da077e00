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
	"path/filepath"

	"github.com/NVIDIA/assetpipe/pkg/handler"
	"github.com/NVIDIA/assetpipe/pkg/header"
	"github.com/NVIDIA/assetpipe/pkg/processor/result"
)

// Manifest maps every bundle to the references of its built variants.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	ContextPath string           `json:"contextPath" yaml:"contextPath"`
	Bundles     []ManifestBundle `json:"bundles" yaml:"bundles"`
}

// ManifestBundle describes one bundle of a Manifest.
type ManifestBundle struct {
	ID           string            `json:"id" yaml:"id"`
	Type         string            `json:"type" yaml:"type"`
	Global       bool              `json:"global,omitempty" yaml:"global,omitempty"`
	AlternateURL string            `json:"alternateUrl,omitempty" yaml:"alternateUrl,omitempty"`
	Variants     []ManifestVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// ManifestVariant is one built variant of a bundle.
type ManifestVariant struct {
	Key         string `json:"key,omitempty" yaml:"key,omitempty"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	URL         string `json:"url" yaml:"url"`
	// File is relative to the manifest.
	File string `json:"file" yaml:"file"`
}

// NewManifest returns the manifest of the successful results of output,
// in bundle order.
func NewManifest(e *handler.Epoch, version string, output *result.Output) *Manifest {
	byBundle := output.ByBundle()
	m := &Manifest{
		Header:      *header.New(header.KindBundleManifest, version),
		ContextPath: e.Config().ContextPath,
	}
	for _, j := range e.Registry().List() {
		mb := ManifestBundle{
			ID:           j.ID,
			Type:         string(j.Type),
			Global:       j.Global,
			AlternateURL: j.AlternateURL,
		}
		for _, res := range byBundle[j.ID] {
			if !res.Success || len(res.Files) == 0 {
				continue
			}
			file, err := filepath.Rel(output.OutputDir, res.Files[0])
			if err != nil {
				file = res.Files[0]
			}
			mb.Variants = append(mb.Variants, ManifestVariant{
				Key:         res.VariantKey,
				Fingerprint: res.Fingerprint,
				URL:         res.URL,
				File:        filepath.ToSlash(file),
			})
		}
		m.Bundles = append(m.Bundles, mb)
	}
	return m
}
