package utils

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

var (
	flaggedGutter = color.New(color.FgRed, color.Bold)
	plainGutter   = color.New(color.FgHiBlack)
	flaggedLine   = color.New(color.FgHiRed)
)

// NumberedCode renders code with a line number gutter. Lines listed in
// flagged are marked with ">" and highlighted. Numbering matches the
// numbering sent to the model.
func NumberedCode(code string, flagged []int) string {
	if code == "" {
		return ""
	}

	marks := make(map[int]bool, len(flagged))
	for _, n := range flagged {
		marks[n] = true
	}

	lines := strings.Split(code, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	width := len(fmt.Sprint(len(lines)))

	var sb strings.Builder
	for i, line := range lines {
		n := i + 1
		gutter := fmt.Sprintf("%*d │ ", width, n)
		if marks[n] {
			sb.WriteString(flaggedGutter.Sprint(">" + gutter))
			sb.WriteString(flaggedLine.Sprint(line))
		} else {
			sb.WriteString(plainGutter.Sprint(" " + gutter))
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Wrap word-wraps s to width and indents every line by pad spaces
func Wrap(s string, width int, pad uint) string {
	if width > 0 {
		s = wordwrap.String(s, width)
	}
	if pad > 0 {
		s = indent.String(s, pad)
	}
	return s
}

// CodeBlock indents code and styles it with the code theme
func CodeBlock(code string) string {
	return Theme.Code.Sprint(indent.String(code, 4))
}
