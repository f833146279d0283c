// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}

func TestNewPrinter_PlainForBuffers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.True(t, p.Plain())

	p.Title("Comparison")
	p.KeyValue("jaccard", "0.33")
	p.Item("academy")
	p.Success("loaded %d nodes", 7)
	p.Warning("dropped %d edges", 1)
	p.Error("failed")
	p.Muted("(none)")

	want := "Comparison\n" +
		"  jaccard: 0.33\n" +
		"  • academy\n" +
		"✓ loaded 7 nodes\n" +
		"⚠ dropped 1 edges\n" +
		"✗ failed\n" +
		"(none)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Section(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Section("Shared tags")
	assert.Equal(t, "\nShared tags\n", buf.String())
}

func TestPrinter_Chain(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []string
		labels []string
		want   string
	}{
		{"empty", nil, nil, ""},
		{"single", []string{"plato"}, nil, "  plato\n"},
		{
			"labeled",
			[]string{"socrates", "plato", "aristotle"},
			[]string{"teacher_student", "teacher_student"},
			"  socrates -[teacher_student]→ plato -[teacher_student]→ aristotle\n",
		},
		{"missing label", []string{"a", "b"}, nil, "  a -[]→ b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPlainPrinter(&buf).Chain(tt.nodes, tt.labels)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_Box(t *testing.T) {
	var buf bytes.Buffer
	NewPlainPrinter(&buf).Box("7 nodes")
	assert.Equal(t, "7 nodes\n", buf.String())

	styled := &Printer{w: &buf}
	buf.Reset()
	styled.Box("7 nodes")
	assert.Contains(t, buf.String(), "7 nodes")
}

func TestPrinter_Icon(t *testing.T) {
	p := NewPlainPrinter(&bytes.Buffer{})
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow, IconBullet} {
		assert.Equal(t, string(icon), p.Icon(icon))
	}

	styled := &Printer{w: &bytes.Buffer{}}
	assert.Contains(t, styled.Icon(IconSuccess), string(IconSuccess))
}
