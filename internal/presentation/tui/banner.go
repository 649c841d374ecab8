package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                 _                `, "#86efac"},
		{`   __ _ _ __ ___| |__   ___  _ __ `, "#4ade80"},
		{`  / _' | '__/ __| '_ \ / _ \| '__|`, "#22c55e"},
		{` | (_| | | | (__| |_) | (_) | |   `, "#16a34a"},
		{`  \__,_|_|  \___|_.__/ \___/|_|   `, "#15803d"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  decision tree analysis "+version).Faint())
	fmt.Fprintln(w)
}

var severityColors = map[domain.Severity]string{
	domain.SeverityCritical: "#dc2626",
	domain.SeverityHigh:     "#ea580c",
	domain.SeverityMedium:   "#ca8a04",
	domain.SeverityLow:      "#2563eb",
}

// Severity returns s coloured for the terminal's profile.
func Severity(s domain.Severity) string {
	color, ok := severityColors[s]
	if !ok {
		return string(s)
	}
	p := termenv.ColorProfile()
	return termenv.String(string(s)).Foreground(p.Color(color)).Bold().String()
}
