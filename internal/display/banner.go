// Package display holds console-only presentation helpers: the startup
// banner and the formatters used when rendering the batch report.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/texmtlx/internal/term"
)

var bannerLines = []string{
	` _                      _   _`,
	`| |_ _____ __ _ __ ___ | |_| |_  __`,
	`| __/ _ \ \/ /| '_ ' _ \| __| \ \/ /`,
	`| ||  __/>  < | | | | | | |_| |>  <`,
	` \__\___/_/\_\|_| |_| |_|\__|_/_/\_\`,
}

// PrintBanner writes the ASCII art banner to w; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	for _, l := range bannerLines {
		fmt.Fprintln(w, l)
	}
	if term.Enabled() {
		fmt.Fprint(w, term.NC)
	}
}
