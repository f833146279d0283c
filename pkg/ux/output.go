// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders human-readable CLI output.
//
// Output is styled with lipgloss when the destination is a terminal and
// plain text otherwise, so piped output stays grep-friendly.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Key       lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Key:       lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon is a status marker.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes styled lines to one destination.
//
// Thread Safety: Not safe for concurrent use.
type Printer struct {
	w     io.Writer
	plain bool
}

// NewPrinter returns a Printer for w, styled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, plain: !IsTerminal(w)}
}

// NewPlainPrinter returns a Printer that never styles.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, plain: true}
}

// Plain reports whether styling is disabled.
func (p *Printer) Plain() bool {
	return p.plain
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return style.Render(text)
}

// Icon returns the icon, colored by its meaning when styling is on.
func (p *Printer) Icon(i Icon) string {
	switch i {
	case IconSuccess:
		return p.render(Styles.Success, string(i))
	case IconWarning:
		return p.render(Styles.Warning, string(i))
	case IconError:
		return p.render(Styles.Error, string(i))
	default:
		return p.render(Styles.Muted, string(i))
	}
}

// Title prints a heading.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, p.render(Styles.Title, text))
}

// Section prints a subheading preceded by a blank line.
func (p *Printer) Section(text string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.render(Styles.Subtitle, text))
}

// KeyValue prints an indented "key: value" line.
func (p *Printer) KeyValue(key string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.render(Styles.Key, key+":"), value)
}

// Item prints an indented bullet.
func (p *Printer) Item(text string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.Icon(IconBullet), text)
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.Icon(IconSuccess), fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.Icon(IconWarning), p.render(Styles.Warning, fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.Icon(IconError), p.render(Styles.Error, fmt.Sprintf(format, args...)))
}

// Muted prints a de-emphasized line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(Styles.Muted, fmt.Sprintf(format, args...)))
}

// Chain prints steps joined by arrows, for example a path with its
// relationship labels: "a -[teacher]-> b".
func (p *Printer) Chain(nodes []string, labels []string) {
	if len(nodes) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(p.render(Styles.Highlight, nodes[0]))
	for i := 1; i < len(nodes); i++ {
		label := ""
		if i-1 < len(labels) {
			label = labels[i-1]
		}
		fmt.Fprintf(&b, " %s %s", p.render(Styles.Muted, "-["+label+"]"+string(IconArrow)), p.render(Styles.Highlight, nodes[i]))
	}
	fmt.Fprintln(p.w, "  "+b.String())
}

// Box prints text inside a rounded border; plain mode prints it as is.
func (p *Printer) Box(text string) {
	if p.plain {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Render(text))
}
