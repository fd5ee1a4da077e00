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

package bundle

import (
	"strings"

	"github.com/NVIDIA/assetpipe/pkg/errors"
	"github.com/NVIDIA/assetpipe/pkg/paths"
	"github.com/NVIDIA/assetpipe/pkg/variant"
)

// Type is the content type of a bundle.
type Type string

const (
	// TypeJS bundles scripts.
	TypeJS Type = "js"
	// TypeCSS bundles style sheets.
	TypeCSS Type = "css"
)

// Extension returns the member file extension of t, including the dot.
func (t Type) Extension() string {
	return "." + string(t)
}

// Definition declares one bundle.
type Definition struct {
	// ID is the unique bundle identifier, also its served path, e.g. "/js/app.js".
	ID   string `json:"id" yaml:"id"`
	Type Type   `json:"type,omitempty" yaml:"type,omitempty"`
	// Mappings lists member paths, directory mappings ("/js/lib/",
	// "/js/lib/**") and generated paths ("messages:app.Messages").
	Mappings []string `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Prefix   string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	Global     bool `json:"global,omitempty" yaml:"global,omitempty"`
	Composite  bool `json:"composite,omitempty" yaml:"composite,omitempty"`
	DebugOnly  bool `json:"debugOnly,omitempty" yaml:"debugOnly,omitempty"`
	DebugNever bool `json:"debugNever,omitempty" yaml:"debugNever,omitempty"`
	// Order ranks global bundles, lowest first.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`

	// Children lists the bundles concatenated by a composite bundle.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	// PostProcessors and UnitPostProcessors override the per-bundle and
	// per-unit chains of the bundle type.
	PostProcessors     []string `json:"postProcessors,omitempty" yaml:"postProcessors,omitempty"`
	UnitPostProcessors []string `json:"unitPostProcessors,omitempty" yaml:"unitPostProcessors,omitempty"`

	Variants variant.Sets `json:"variants,omitempty" yaml:"variants,omitempty"`

	// Exclusions are doublestar patterns of directories skipped by the
	// directory mappings of the bundle.
	Exclusions []string `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`

	// AlternateURL replaces the bundle by an externally hosted resource.
	// Such bundles are never built.
	AlternateURL string `json:"alternateUrl,omitempty" yaml:"alternateUrl,omitempty"`
}

// ResolvedType returns the declared type, or the type implied by the
// extension of the identifier.
func (d *Definition) ResolvedType() Type {
	if d.Type != "" {
		return d.Type
	}
	switch paths.Ext(d.ID) {
	case "js":
		return TypeJS
	case "css":
		return TypeCSS
	}
	return ""
}

func (d *Definition) invalid(msg string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidConfig,
		"bundle "+d.ID+": "+msg, map[string]any{"bundle": d.ID})
}

// Validate checks the definition on its own.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "bundle definition without id")
	}
	switch d.ResolvedType() {
	case TypeJS, TypeCSS:
	default:
		return d.invalid("unknown bundle type " + string(d.Type))
	}
	if d.DebugOnly && d.DebugNever {
		return d.invalid("debugOnly and debugNever are exclusive")
	}
	if d.AlternateURL != "" {
		return nil
	}
	if d.Composite {
		if len(d.Children) == 0 {
			return d.invalid("composite bundle without children")
		}
		if len(d.Mappings) > 0 {
			return d.invalid("composite bundle cannot declare mappings")
		}
	} else if len(d.Mappings) == 0 {
		return d.invalid("bundle without mappings")
	}
	for axis, set := range d.Variants {
		if set.Axis == "" {
			set.Axis = axis
		}
		if set.Axis != axis {
			return d.invalid("variant set " + set.Axis + " declared under axis " + axis)
		}
		if err := set.Validate(); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"bundle "+d.ID+": invalid variants", err, map[string]any{"bundle": d.ID, "axis": axis})
		}
	}
	return nil
}
