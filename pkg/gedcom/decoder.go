// Package gedcom decodes GEDCOM 5.5 genealogy files into person and
// family records.
//
// GEDCOM is a line-oriented format: every line carries a nesting level,
// an optional cross-reference pointer, a tag, and an optional value.
// The decoder first builds the raw line tree, then extracts the typed
// Individual and Family records the rest of the tool works with. Only
// the record types this tool consumes are materialized; unknown tags are
// kept in the raw tree but otherwise ignored.
package gedcom

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
)

// Line is a single decoded GEDCOM line with its nested sub-lines.
type Line struct {
	Level    int
	XRef     string // cross-reference ID without the @ delimiters, or ""
	Tag      string
	Value    string
	Children []*Line
}

// Child returns the first direct sub-line with the given tag, or nil.
func (l *Line) Child(tag string) *Line {
	for _, c := range l.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildValue returns the value of the first direct sub-line with the
// given tag, or "".
func (l *Line) ChildValue(tag string) string {
	if c := l.Child(tag); c != nil {
		return c.Value
	}
	return ""
}

// ValueWithContinuations returns the line's value with CONT sub-lines
// joined by newlines and CONC sub-lines joined without a separator.
func (l *Line) ValueWithContinuations() string {
	var b strings.Builder
	b.WriteString(l.Value)
	for _, c := range l.Children {
		switch c.Tag {
		case "CONT":
			b.WriteString("\n")
			b.WriteString(c.Value)
		case "CONC":
			b.WriteString(c.Value)
		}
	}
	return b.String()
}

// DecodeFile decodes the GEDCOM file at path.
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "GEDCOM file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes a GEDCOM document from r.
// Classic Mac exports with CR-only line endings are repaired before
// scanning, matching what genealogy apps on macOS still produce.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = repairLineEndings(data)

	roots, err := scanLines(data)
	if err != nil {
		return nil, err
	}
	return buildDocument(roots)
}

// repairLineEndings converts CR-only line endings to LF.
// Files with LF or CRLF endings pass through untouched.
func repairLineEndings(data []byte) []byte {
	if bytes.ContainsRune(data, '\r') && !bytes.ContainsRune(data, '\n') {
		return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
	}
	return data
}

// scanLines parses raw bytes into a tree of level-0 lines.
func scanLines(data []byte) ([]*Line, error) {
	var roots []*Line
	var stack []*Line // stack[i] is the open line at level i

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		line, err := parseLine(raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGedcom, err, "line %d", lineNo)
		}

		if line.Level > len(stack) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidGedcom,
				"line %d: level %d without parent at level %d", lineNo, line.Level, line.Level-1)
		}
		stack = stack[:line.Level]

		if line.Level == 0 {
			roots = append(roots, line)
		} else {
			parent := stack[line.Level-1]
			parent.Children = append(parent.Children, line)
		}
		stack = append(stack, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGedcom, err, "scan input")
	}

	return roots, nil
}

// parseLine splits a raw GEDCOM line: LEVEL [@XREF@] TAG [value].
func parseLine(raw string) (*Line, error) {
	rest := strings.TrimLeft(raw, " \t")

	levelStr, rest, ok := cutField(rest)
	if !ok {
		return nil, fmt.Errorf("missing tag in %q", raw)
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 0 {
		return nil, fmt.Errorf("invalid level %q", levelStr)
	}

	line := &Line{Level: level}

	field, next, ok := cutField(rest)
	if !ok {
		return nil, fmt.Errorf("missing tag in %q", raw)
	}
	if strings.HasPrefix(field, "@") && strings.HasSuffix(field, "@") && len(field) > 2 {
		line.XRef = strings.Trim(field, "@")
		field, next, ok = cutField(next)
		if !ok {
			return nil, fmt.Errorf("missing tag after pointer in %q", raw)
		}
	}

	line.Tag = field
	line.Value = next
	return line, nil
}

// cutField splits off the first space-delimited field.
// The remainder keeps any internal spacing, since GEDCOM values may
// contain runs of spaces.
func cutField(s string) (field, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", true
}
