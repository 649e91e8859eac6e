// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/bureau-foundation/imagepipe/lib/backend"
	"github.com/bureau-foundation/imagepipe/lib/testutil"
)

func decodeFormat(t *testing.T, data []byte) string {
	t.Helper()
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	return format
}

func TestNativeConvertsPNGToJPEG(t *testing.T) {
	source := testutil.PNG(t, 32, 24)

	output, err := backend.Native{}.Encode(context.Background(), source, backend.FormatJPEG, backend.Settings{Quality: 50})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := decodeFormat(t, output); got != "jpeg" {
		t.Errorf("expected jpeg output, got %q", got)
	}
}

func TestNativeConvertsJPEGToWebP(t *testing.T) {
	source := testutil.JPEG(t, 32, 32, 90)

	output, err := backend.Native{}.Encode(context.Background(), source, backend.FormatWebP, backend.Settings{Quality: 10})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(output) < 12 || string(output[0:4]) != "RIFF" || string(output[8:12]) != "WEBP" {
		t.Fatalf("expected a RIFF/WEBP container, got % x", output[:min(len(output), 12)])
	}
}

func TestNativeRejectsMalformedInput(t *testing.T) {
	_, err := backend.Native{}.Encode(context.Background(), []byte("not an image"), backend.FormatWebP, backend.Settings{})
	var encodeErr *backend.EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
	if encodeErr.Backend != backend.KindNative {
		t.Errorf("expected native backend in error, got %q", encodeErr.Backend)
	}
}

func TestNativeRejectsVectorTarget(t *testing.T) {
	_, err := backend.Native{}.Encode(context.Background(), testutil.PNG(t, 4, 4), backend.FormatSVG, backend.Settings{})
	var encodeErr *backend.EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
}

func TestPoolIngestThenEncode(t *testing.T) {
	pool := backend.NewPool(backend.PoolConfig{Size: 2})

	img, err := pool.Ingest(context.Background(), testutil.PNG(t, 16, 16))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	jpegBytes, err := img.Encode(context.Background(), backend.FormatJPEG, backend.Settings{Quality: 60})
	if err != nil {
		t.Fatalf("Encode jpeg: %v", err)
	}
	if got := decodeFormat(t, jpegBytes); got != "jpeg" {
		t.Errorf("expected jpeg, got %q", got)
	}
	pngBytes, err := img.Encode(context.Background(), backend.FormatPNG, backend.Settings{})
	if err != nil {
		t.Fatalf("Encode png: %v", err)
	}
	if got := decodeFormat(t, pngBytes); got != "png" {
		t.Errorf("expected png, got %q", got)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := pool.Encode(context.Background(), testutil.PNG(t, 4, 4), backend.FormatPNG, backend.Settings{}); !errors.Is(err, backend.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Close, got %v", err)
	}
}

func TestPoolReportsDecodeFailure(t *testing.T) {
	pool := backend.NewPool(backend.PoolConfig{Size: 1})
	defer pool.Close()

	_, err := pool.Ingest(context.Background(), []byte{0x00, 0x01})
	var encodeErr *backend.EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("expected *EncodeError, got %v", err)
	}
	if encodeErr.Backend != backend.KindPool {
		t.Errorf("expected pool backend in error, got %q", encodeErr.Backend)
	}
}

func TestVectorShrinksSVG(t *testing.T) {
	source := []byte(testutil.SVG)
	output, err := backend.NewVector().Encode(context.Background(), source, backend.FormatSVG, backend.Settings{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(output) >= len(source) {
		t.Errorf("expected output smaller than %d bytes, got %d", len(source), len(output))
	}
	if strings.Contains(string(output), "<!--") {
		t.Errorf("expected comments removed, got %s", output)
	}
	if !strings.Contains(string(output), "<svg") {
		t.Errorf("expected an svg document, got %s", output)
	}
}

func TestVectorNeverGrows(t *testing.T) {
	minimal := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	output, err := backend.NewVector().Encode(context.Background(), minimal, backend.FormatSVG, backend.Settings{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(output) > len(minimal) {
		t.Errorf("output grew from %d to %d bytes", len(minimal), len(output))
	}
}

func TestVectorRejectsInvalidInput(t *testing.T) {
	vector := backend.NewVector()

	_, err := vector.Encode(context.Background(), []byte{0xff, 0xfe, 0xfd}, backend.FormatSVG, backend.Settings{})
	var encodeErr *backend.EncodeError
	if !errors.As(err, &encodeErr) {
		t.Errorf("invalid UTF-8: expected *EncodeError, got %v", err)
	}

	_, err = vector.Encode(context.Background(), []byte(testutil.SVG), backend.FormatPNG, backend.Settings{})
	if !errors.As(err, &encodeErr) {
		t.Errorf("raster target: expected *EncodeError, got %v", err)
	}
}
