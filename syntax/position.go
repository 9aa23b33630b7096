package syntax

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Point is a zero-based line and UTF-16 code unit column, the coordinate
// system editors use for document positions.
type Point struct {
	Line      int
	Character int
}

// LineIndex maps byte offsets of a text snapshot to Points.
type LineIndex struct {
	src    []byte
	starts []uint32
}

func NewLineIndex(src []byte) *LineIndex {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineIndex{src: src, starts: starts}
}

func (l *LineIndex) LineCount() int {
	return len(l.starts)
}

// LineStart returns the byte offset at which line begins.
func (l *LineIndex) LineStart(line int) uint32 {
	return l.starts[line]
}

// Line returns the zero-based line containing off.
func (l *LineIndex) Line(off uint32) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > off }) - 1
}

// Point converts a byte offset. Offsets past the end clamp to the end of the
// text; an offset inside a multi-byte sequence counts the partial rune as
// one code unit.
func (l *LineIndex) Point(off uint32) Point {
	if int(off) > len(l.src) {
		off = uint32(len(l.src))
	}
	line := l.Line(off)
	col := 0
	for b := l.src[l.starts[line]:off]; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		if n := utf16.RuneLen(r); n > 0 {
			col += n
		} else {
			col++
		}
		b = b[size:]
	}
	return Point{Line: line, Character: col}
}
