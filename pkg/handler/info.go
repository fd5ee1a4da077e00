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

package handler

import "github.com/NVIDIA/assetpipe/pkg/variant"

// BundleInfo describes a registered bundle.
type BundleInfo struct {
	ID           string        `json:"id" yaml:"id"`
	Type         string        `json:"type" yaml:"type"`
	Prefix       string        `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Global       bool          `json:"global,omitempty" yaml:"global,omitempty"`
	Composite    bool          `json:"composite,omitempty" yaml:"composite,omitempty"`
	Children     []string      `json:"children,omitempty" yaml:"children,omitempty"`
	AlternateURL string        `json:"alternateUrl,omitempty" yaml:"alternateUrl,omitempty"`
	Members      []string      `json:"members" yaml:"members"`
	Licenses     []string      `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Variants     []variant.Set `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Bundles describes every bundle of the current epoch, global bundles
// first.
func (h *Handler) Bundles() []*BundleInfo {
	list := h.Epoch().registry.List()
	out := make([]*BundleInfo, 0, len(list))
	for _, j := range list {
		info := &BundleInfo{
			ID:           j.ID,
			Type:         string(j.Type),
			Prefix:       j.Prefix,
			Global:       j.Global,
			Composite:    j.Composite,
			Children:     j.Children,
			AlternateURL: j.AlternateURL,
			Members:      j.Paths(),
			Licenses:     j.Licenses,
		}
		for _, axis := range j.Variants.Axes() {
			info.Variants = append(info.Variants, j.Variants[axis])
		}
		out = append(out, info)
	}
	return out
}
