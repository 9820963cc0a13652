package markdown

import "strings"

// collapseBlankLines squeezes runs of blank lines to one, leaving fenced
// code untouched.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	fence := ""
	blank := false
	for _, line := range lines {
		marker := fenceMarker(line)
		if fence != "" {
			out = append(out, line)
			if marker != "" && len(marker) >= len(fence) && strings.TrimSpace(strings.TrimLeft(line, " >")) == marker {
				fence = ""
			}
			continue
		}
		if marker != "" {
			fence = marker
		}
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// fenceMarker returns the run of three or more backticks opening line, if
// any, after blockquote markers and indentation.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " >")
	n := 0
	for n < len(trimmed) && trimmed[n] == '`' {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}
