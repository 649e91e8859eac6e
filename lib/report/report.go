// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report prints per-asset result lines and a build summary to
// a terminal or log stream.
//
// A [Printer] implements pipeline.Reporter. Lines look like:
//
//	✓ dist/assets/hero-bc3db3c5.webp    1.2 MiB ➜ 35 KiB  +120ms
//	✨ dist/assets/logo.png              cache hit
//	✗ dist/assets/broken.jpg            backend native: ...
//
// Colors follow the output's capabilities: NO_COLOR and non-terminal
// outputs get plain text.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/imagepipe/lib/pipeline"
)

// DefaultPathWidth is the column the size figures start at.
const DefaultPathWidth = 44

// Printer writes one line per finished asset. Report may be called
// from many goroutines; lines never interleave.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	pathWidth int

	success lipgloss.Style
	cached  lipgloss.Style
	failure lipgloss.Style
	faint   lipgloss.Style
	path    lipgloss.Style
}

// New returns a printer writing to out with the given color profile.
// Use [Profile] to detect one for a file.
func New(out io.Writer, profile termenv.Profile) *Printer {
	renderer := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	// The renderer re-detects the profile from the environment unless
	// it is set explicitly.
	renderer.SetColorProfile(profile)

	return &Printer{
		out:       out,
		pathWidth: DefaultPathWidth,
		success:   renderer.NewStyle().Foreground(lipgloss.Color("2")),
		cached:    renderer.NewStyle().Foreground(lipgloss.Color("6")),
		failure:   renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		faint:     renderer.NewStyle().Faint(true),
		path:      renderer.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

// Profile returns the color profile for file: [termenv.Ascii] when the
// file is not a terminal or NO_COLOR is set, the detected profile
// otherwise.
func Profile(file *os.File) termenv.Profile {
	if !term.IsTerminal(int(file.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(file).EnvColorProfile()
}

// Stderr returns a printer for os.Stderr.
func Stderr() *Printer {
	return New(os.Stderr, Profile(os.Stderr))
}

// SetPathWidth changes the path column width.
func (p *Printer) SetPathWidth(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pathWidth = width
}

// Report prints the line for one asset. Skipped assets print nothing.
func (p *Printer) Report(record pipeline.AssetRecord) {
	var line string
	switch record.State {
	case pipeline.StateDone:
		line = p.doneLine(record)
	case pipeline.StateFailed:
		line = p.failure.Render("✗") + " " + p.column(displayPath(record)) + "  " + p.failure.Render(errorText(record.Err))
	default:
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func (p *Printer) doneLine(record pipeline.AssetRecord) string {
	if record.CacheHit {
		return p.cached.Render("✨") + " " + p.column(displayPath(record)) + "  " + p.cached.Render("cache hit")
	}
	if record.Kept {
		return p.faint.Render("•") + " " + p.column(displayPath(record)) + "  " +
			p.faint.Render(humanize.IBytes(uint64(record.OriginSizeAtEncode))+" kept, encode was not smaller")
	}
	return p.success.Render("✓") + " " + p.column(displayPath(record)) + "  " +
		p.faint.Render(humanize.IBytes(uint64(record.OriginSizeAtEncode))) + " ➜ " +
		humanize.IBytes(uint64(record.EncodedSize)) + "  " +
		p.faint.Render(elapsed(record.Elapsed))
}

// column renders path padded or truncated to the path width. Widths
// are display cells, so wide runes in filenames stay aligned.
func (p *Printer) column(path string) string {
	width := ansi.StringWidth(path)
	if width > p.pathWidth {
		path = ansi.Truncate(path, p.pathWidth, "…")
		width = ansi.StringWidth(path)
	}
	return p.path.Render(path) + strings.Repeat(" ", p.pathWidth-width)
}

// Summary prints the closing line for a phase.
func (p *Printer) Summary(summary pipeline.Summary, took time.Duration) {
	parts := []string{fmt.Sprintf("%d %s", summary.Done, plural(summary.Done, "asset", "assets"))}
	if summary.Encoded > 0 {
		parts = append(parts, fmt.Sprintf("%d encoded", summary.Encoded))
	}
	if summary.CacheHits > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", summary.CacheHits))
	}
	if summary.Kept > 0 {
		parts = append(parts, fmt.Sprintf("%d kept", summary.Kept))
	}
	if summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", summary.Skipped))
	}
	if summary.Substitutions > 0 {
		parts = append(parts, fmt.Sprintf("%d %s rewritten", summary.Substitutions,
			plural(summary.Substitutions, "reference", "references")))
	}

	line := p.success.Render("imagepipe") + " " + strings.Join(parts, ", ")
	if summary.BytesBefore > 0 {
		line += fmt.Sprintf("  %s ➜ %s (%s)",
			humanize.IBytes(uint64(summary.BytesBefore)),
			humanize.IBytes(uint64(summary.BytesAfter)),
			savings(summary.BytesBefore, summary.BytesAfter))
	}
	line += "  " + p.faint.Render("in "+took.Round(time.Millisecond).String())
	if summary.Failed > 0 {
		line += "  " + p.failure.Render(fmt.Sprintf("%d failed", summary.Failed))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func displayPath(record pipeline.AssetRecord) string {
	if record.OutputPath != "" {
		return record.OutputPath
	}
	return record.SourcePath
}

func errorText(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}

func elapsed(d time.Duration) string {
	return fmt.Sprintf("+%dms", d.Milliseconds())
}

func savings(before, after int64) string {
	change := float64(after-before) / float64(before) * 100
	return fmt.Sprintf("%+.0f%%", change)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
