// Package utils holds terminal output helpers shared by the commands
package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Gruvbox inspired palette
var (
	gruvboxFgDark = text.Colors{text.FgHiBlack}
	gruvboxRed    = text.Colors{text.FgRed}
	gruvboxGreen  = text.Colors{text.FgGreen}
	gruvboxYellow = text.Colors{text.FgYellow}
	gruvboxBlue   = text.Colors{text.FgBlue}
	gruvboxAqua   = text.Colors{text.FgCyan}

	gruvboxAquaBright   = text.Colors{text.FgHiCyan}
	gruvboxBlueBright   = text.Colors{text.FgHiBlue}
	gruvboxYellowBright = text.Colors{text.FgHiYellow}
	gruvboxGreenBright  = text.Colors{text.FgHiGreen}

	gruvboxBold = text.Colors{text.Bold}
)

// Theme - exported theme colors for consistent UI
var Theme = struct {
	Success text.Colors
	Info    text.Colors
	Warning text.Colors
	Error   text.Colors
	Heading text.Colors
	Subtle  text.Colors
	Accent  text.Colors

	Title       text.Colors
	TableHeader text.Colors
	TableBorder text.Colors
	TableRow    text.Colors
	TableAltRow text.Colors
	Badge       text.Colors
	Code        text.Colors
}{
	Success: gruvboxGreen,
	Info:    gruvboxBlue,
	Warning: gruvboxYellow,
	Error:   gruvboxRed,
	Heading: append(gruvboxAquaBright, text.Bold),
	Subtle:  gruvboxFgDark,
	Accent:  gruvboxAqua,

	Title:       append(gruvboxAquaBright, text.Bold),
	TableHeader: append(gruvboxBlueBright, text.Bold),
	TableBorder: gruvboxBlue,
	TableRow:    text.Colors{text.FgWhite},
	TableAltRow: text.Colors{text.FgWhite, text.Faint},
	Badge:       append(gruvboxYellowBright, text.Bold),
	Code:        gruvboxGreenBright,
}

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Fprintln(Output, Theme.Heading.Sprint(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintln(Output, Theme.Success.Sprint("✓ ")+message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintln(Output, Theme.Info.Sprint("ℹ ")+message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(Output, Theme.Warning.Sprint("⚠ ")+message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintln(Output, Theme.Error.Sprint("✗ ")+message)
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Fprintf(Output, "%s: %s\n", gruvboxBold.Sprint(key), value)
}

// PrintBadge prints a badge-like text followed by a message
func PrintBadge(badge, message string) {
	fmt.Fprintf(Output, " %s %s\n", Theme.Badge.Sprint(badge), message)
}
