// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/imagepipe/lib/backend"
)

// ConversionRule declares that sources with extension From are
// converted to extension To.
type ConversionRule struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

type compiledRule struct {
	from     string
	to       string
	toFormat backend.Format
}

// Rules is a validated, ordered rule list.
type Rules struct {
	rules []compiledRule
}

// CompileRules validates rules. Both sides of every rule must name a
// raster format (png, jpg, jpeg, webp, avif); anything else is a
// *backend.ConfigurationError naming the offending entry.
func CompileRules(rules []ConversionRule) (Rules, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for index, rule := range rules {
		from := normalizeExt(rule.From)
		to := normalizeExt(rule.To)

		if err := requireRaster(from, fmt.Sprintf("conversion[%d].from", index)); err != nil {
			return Rules{}, err
		}
		if err := requireRaster(to, fmt.Sprintf("conversion[%d].to", index)); err != nil {
			return Rules{}, err
		}
		toFormat, _ := backend.ParseFormat(to)
		compiled = append(compiled, compiledRule{from: from, to: to, toFormat: toFormat})
	}
	return Rules{rules: compiled}, nil
}

func requireRaster(extension, field string) error {
	format, err := backend.ParseFormat(extension)
	if err != nil {
		return &backend.ConfigurationError{Field: field, Reason: err.Error()}
	}
	if !format.IsRaster() {
		return &backend.ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not a raster format", extension)}
	}
	return nil
}

// Len returns the number of rules.
func (r Rules) Len() int { return len(r.rules) }

// Target resolves the output extension and format for a source
// extension. The first rule whose From equals the extension
// (case-insensitively) wins. Without a match the asset keeps its own
// extension and format, and converted is false. SVG sources always
// stay SVG.
func (r Rules) Target(sourceExt string) (targetExt string, format backend.Format, converted bool, err error) {
	extension := normalizeExt(sourceExt)
	sourceFormat, err := backend.ParseFormat(extension)
	if err != nil {
		return "", "", false, err
	}
	if sourceFormat.IsRaster() {
		for _, rule := range r.rules {
			if rule.from == extension {
				return rule.to, rule.toFormat, rule.toFormat != sourceFormat || rule.to != extension, nil
			}
		}
	}
	return extension, sourceFormat, false, nil
}

func normalizeExt(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}
