// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		extension string
		want      Format
	}{
		{"jpg", FormatJPEG},
		{"jpeg", FormatJPEG},
		{".JPG", FormatJPEG},
		{"png", FormatPNG},
		{"WebP", FormatWebP},
		{".avif", FormatAVIF},
		{"svg", FormatSVG},
	}
	for _, test := range tests {
		got, err := ParseFormat(test.extension)
		if err != nil {
			t.Errorf("ParseFormat(%q): unexpected error: %v", test.extension, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", test.extension, got, test.want)
		}
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	for _, extension := range []string{"", "gif", "js", "css", "jpgx"} {
		if _, err := ParseFormat(extension); err == nil {
			t.Errorf("ParseFormat(%q): expected error", extension)
		}
		if IsImageExtension(extension) {
			t.Errorf("IsImageExtension(%q) = true, want false", extension)
		}
	}
}

func TestFormatClasses(t *testing.T) {
	for _, format := range []Format{FormatJPEG, FormatPNG, FormatWebP, FormatAVIF} {
		if !format.IsRaster() {
			t.Errorf("%s: expected raster", format)
		}
		if format.IsText() {
			t.Errorf("%s: expected binary", format)
		}
	}
	if FormatSVG.IsRaster() {
		t.Error("svg: expected not raster")
	}
	if !FormatSVG.IsText() {
		t.Error("svg: expected text")
	}
}
