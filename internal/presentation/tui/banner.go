package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   ___ __ _ ___  ___ _ __   __ ___   __",
	"  / __/ _` / __|/ _ \\ '_ \\ / _` \\ \\ / /",
	" | (_| (_| \\__ \\  __/ | | | (_| |\\ V / ",
	"  \\___\\__,_|___/\\___|_| |_|\\__,_| \\_/  ",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9"}

// PrintBanner writes the casenav banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintf(w, "  v%s\n\n", strings.TrimSpace(version))
}
