package markdown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func (r *renderer) list(n *html.Node, ordered bool) {
	start := 1
	if ordered {
		if v, err := strconv.Atoi(strings.TrimSpace(attr(n, "start"))); err == nil {
			start = v
		}
	}

	nested := r.sub(newBlockBuffer())
	nested.listDepth = r.listDepth + 1

	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.DataAtom == atom.Li:
			items = append(items, nested.renderBlockChildren(c))
		case c.Type == html.ElementNode:
			// Stray children such as a <ul> directly inside a <ul> belong to
			// the preceding item.
			content := nested.renderNode(c)
			if len(items) == 0 {
				items = append(items, content)
				continue
			}
			items[len(items)-1] += "\n" + content
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) != "":
			items = append(items, strings.TrimSpace(c.Data))
		}
	}
	if len(items) == 0 {
		return
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		marker := "- "
		if ordered {
			marker = strconv.Itoa(start+i) + ". "
		}
		lines = append(lines, indentItem(marker, strings.Trim(item, "\n")))
	}

	if r.listDepth > 0 {
		r.out.ensureLineBreak()
	} else {
		r.out.ensureBlankLine()
	}
	r.out.write(strings.Join(lines, "\n"))
	if r.listDepth > 0 {
		r.out.ensureLineBreak()
	} else {
		r.out.ensureBlankLine()
	}
}

// indentItem prefixes the first line with marker and aligns the remaining
// lines under the item's content.
func indentItem(marker, content string) string {
	if content == "" {
		return strings.TrimRight(marker, " ")
	}
	pad := strings.Repeat(" ", len(marker))
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = marker + line
		case line != "":
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) blockquote(n *html.Node) {
	content := strings.Trim(r.renderBlockChildren(n), "\n")
	if strings.TrimSpace(content) == "" {
		return
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	r.out.ensureBlankLine()
	r.out.write(strings.Join(lines, "\n"))
	r.out.ensureBlankLine()
}

func (r *renderer) pre(n *html.Node) {
	// The parser already drops the newline that directly follows <pre>.
	code := rawText(n)
	if strings.TrimSpace(code) == "" {
		return
	}
	fence := "```"
	if run := longestRun(code, '`'); run >= len(fence) {
		fence = strings.Repeat("`", run+1)
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	r.out.ensureBlankLine()
	r.out.write(fence + codeLanguage(n) + "\n" + code + fence)
	r.out.ensureBlankLine()
}

// codeLanguage reads a language-x or lang-x class from the <pre> or its
// first <code> child.
func codeLanguage(pre *html.Node) string {
	candidates := []*html.Node{pre}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			candidates = append(candidates, c)
			break
		}
	}
	for _, n := range candidates {
		for _, class := range strings.Fields(attr(n, "class")) {
			for _, prefix := range []string{"language-", "lang-"} {
				if lang, ok := strings.CutPrefix(class, prefix); ok && lang != "" {
					return lang
				}
			}
		}
	}
	return ""
}

func (r *renderer) table(n *html.Node) {
	var head, body, foot [][]string
	var collect func(section *html.Node, dst *[][]string)
	collect = func(section *html.Node, dst *[][]string) {
		for c := section.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				if row := r.tableRow(c); len(row) > 0 {
					*dst = append(*dst, row)
				}
			case atom.Thead:
				collect(c, &head)
			case atom.Tbody:
				collect(c, &body)
			case atom.Tfoot:
				collect(c, &foot)
			}
		}
	}
	collect(n, &body)

	rows := append(append(head, body...), foot...)
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, tableLine(rows[0], width))
	delimiter := make([]string, width)
	for i := range delimiter {
		delimiter[i] = "---"
	}
	lines = append(lines, tableLine(delimiter, width))
	for _, row := range rows[1:] {
		lines = append(lines, tableLine(row, width))
	}

	r.out.ensureBlankLine()
	r.out.write(strings.Join(lines, "\n"))
	r.out.ensureBlankLine()
}

func (r *renderer) tableRow(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := flatten(r.renderInline(c))
		cells = append(cells, strings.ReplaceAll(cell, "|", `\|`))
	}
	return cells
}

func tableLine(cells []string, width int) string {
	var b strings.Builder
	b.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if cell == "" {
			b.WriteString(" |")
			continue
		}
		b.WriteString(" " + cell + " |")
	}
	return b.String()
}
