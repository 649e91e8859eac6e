// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"native", KindNative},
		{"pool", KindPool},
		{"sharp", KindNative},
		{"squoosh", KindPool},
		{" Pool ", KindPool},
	}
	for _, test := range tests {
		got, err := ParseKind(test.name)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseKind(%q) = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	for _, name := range []string{"", "vector", "imagemagick"} {
		_, err := ParseKind(name)
		var configErr *ConfigurationError
		if !errors.As(err, &configErr) {
			t.Errorf("ParseKind(%q): expected *ConfigurationError, got %v", name, err)
			continue
		}
		if configErr.Field != "backend" {
			t.Errorf("expected field backend, got %q", configErr.Field)
		}
	}
}

func TestResolvePoolFallback(t *testing.T) {
	registry := NewRegistry(Capabilities{Native: true, Pool: false, Vector: true, Cores: 1}, nil)

	resolved, warning, err := registry.Resolve(KindPool)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != KindNative {
		t.Errorf("expected fallback to native, got %q", resolved)
	}
	if warning == "" {
		t.Error("expected a fallback warning")
	}

	encoder, err := registry.Acquire(KindPool)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if encoder.Kind() != KindNative {
		t.Errorf("expected native encoder, got %q", encoder.Kind())
	}
}

func TestResolvePoolCapable(t *testing.T) {
	registry := NewRegistry(Capabilities{Native: true, Pool: true, Vector: true, Cores: 3}, nil)

	resolved, warning, err := registry.Resolve(KindPool)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != KindPool || warning != "" {
		t.Errorf("expected pool without warning, got %q %q", resolved, warning)
	}

	encoder, err := registry.Acquire(KindPool)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	pool, ok := encoder.(*Pool)
	if !ok {
		t.Fatalf("expected *Pool, got %T", encoder)
	}
	if pool.Size() != 3 {
		t.Errorf("expected pool sized to 3 cores, got %d", pool.Size())
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestResolveUnknownKind(t *testing.T) {
	registry := NewRegistry(Probe(), nil)
	_, _, err := registry.Resolve(Kind("gpu"))
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if _, err := registry.Acquire(Kind("gpu")); err == nil {
		t.Error("Acquire: expected error for unknown kind")
	}
}

func TestProbe(t *testing.T) {
	capabilities := Probe()
	if capabilities.Cores < 1 {
		t.Errorf("expected at least one core, got %d", capabilities.Cores)
	}
	if !capabilities.Native || !capabilities.Vector {
		t.Error("native and vector backends should always be available")
	}
	if capabilities.Pool != (capabilities.Cores > 1) {
		t.Errorf("pool availability %v inconsistent with %d cores", capabilities.Pool, capabilities.Cores)
	}
	if !capabilities.Available(KindNative) || capabilities.Available(Kind("gpu")) {
		t.Error("Available disagrees with capabilities")
	}
}
