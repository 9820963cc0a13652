package markdown

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

var (
	spaceRun = regexp.MustCompile(`\s+`)

	// indentAfterBlank matches indentation that opens a line after a blank
	// line, where Markdown would start an indented code block.
	indentAfterBlank = regexp.MustCompile(`(\n[ \t]*\n)[ \t]+`)
)

// renderer walks a parsed document and writes Markdown into out.
type renderer struct {
	cfg       crawler.ConvertConfig
	base      *url.URL
	out       *mdBuffer
	listDepth int
}

func newRenderer(cfg crawler.ConvertConfig, base *url.URL) *renderer {
	return &renderer{cfg: cfg, base: base, out: newBlockBuffer()}
}

// sub returns a renderer sharing configuration but writing to buf.
func (r *renderer) sub(buf *mdBuffer) *renderer {
	return &renderer{cfg: r.cfg, base: r.base, out: buf, listDepth: r.listDepth}
}

func (r *renderer) renderBlockChildren(n *html.Node) string {
	s := r.sub(newBlockBuffer())
	s.children(n)
	s.out.trimTrailingSpaces()
	return s.out.String()
}

func (r *renderer) renderNode(n *html.Node) string {
	s := r.sub(newBlockBuffer())
	s.node(n)
	s.out.trimTrailingSpaces()
	return s.out.String()
}

func (r *renderer) renderInline(n *html.Node) string {
	s := r.sub(newInlineBuffer())
	s.children(n)
	return s.out.String()
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c)
	}
}

func (r *renderer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
	case html.CommentNode:
		return
	case html.ElementNode:
		r.element(n)
	case html.DocumentNode:
		r.children(n)
	}
}

func (r *renderer) element(n *html.Node) {
	switch n.DataAtom {
	case atom.Head, atom.Title, atom.Meta, atom.Link, atom.Base, atom.Template:
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		r.heading(n)
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Main, atom.Nav, atom.Aside, atom.Figure, atom.Figcaption, atom.Address,
		atom.Form, atom.Fieldset, atom.Details, atom.Summary, atom.Dl, atom.Dt, atom.Dd:
		r.block(n)
	case atom.Ul:
		r.list(n, false)
	case atom.Ol:
		r.list(n, true)
	case atom.Blockquote:
		r.blockquote(n)
	case atom.Pre:
		r.pre(n)
	case atom.Table:
		r.table(n)
	case atom.Hr:
		r.out.ensureBlankLine()
		r.out.write("---")
		r.out.ensureBlankLine()
	case atom.Br:
		r.lineBreak()
	case atom.A:
		r.anchor(n)
	case atom.Img:
		r.image(n)
	case atom.Strong, atom.B:
		r.wrap(n, "**")
	case atom.Em, atom.I:
		r.wrap(n, "*")
	case atom.Del, atom.S, atom.Strike:
		r.wrap(n, "~~")
	case atom.Mark:
		r.wrap(n, "==")
	case atom.Code, atom.Kbd, atom.Samp:
		r.inlineCode(n)
	default:
		r.children(n)
	}
}

func (r *renderer) text(s string) {
	if r.cfg.CleanWhitespace {
		s = spaceRun.ReplaceAllString(s, " ")
	} else {
		s = indentAfterBlank.ReplaceAllString(s, "$1")
	}
	if r.out.atLineStart() || r.out.endsWithSpace() {
		s = strings.TrimLeft(s, " \t\r\n")
	}
	r.out.write(s)
}

func (r *renderer) block(n *html.Node) {
	r.out.ensureBlankLine()
	r.children(n)
	r.out.ensureBlankLine()
}

func (r *renderer) heading(n *html.Node) {
	level := int(n.Data[1] - '0')
	if !r.cfg.PreserveHeadings || level > r.cfg.HeadingLevel() {
		r.block(n)
		return
	}
	content := flatten(r.renderInline(n))
	if content == "" {
		return
	}
	r.out.ensureBlankLine()
	r.out.write(strings.Repeat("#", level) + " " + content)
	r.out.ensureBlankLine()
}

func (r *renderer) lineBreak() {
	if !r.cfg.CleaningRules.PreserveLineBreaks || r.out.inline {
		r.out.space()
		return
	}
	if r.out.empty() {
		return
	}
	if r.out.atLineStart() {
		if r.out.trailingNewlines < 2 {
			r.out.write("\n")
		}
		return
	}
	r.out.trimTrailingSpaces()
	r.out.write("\\\n")
}

// wrap renders n's inline content between marker pairs, keeping the
// spacing that surrounded the content outside the markers.
func (r *renderer) wrap(n *html.Node, marker string) {
	inner := r.renderInline(n)
	content := flatten(inner)
	if content == "" {
		r.edgeSpace(inner)
		return
	}
	r.emit(inner, marker+content+marker)
}

func (r *renderer) emit(inner, formatted string) {
	if startsWithSpace(inner) {
		r.out.space()
	}
	r.out.write(formatted)
	if endsWithSpace(inner) {
		r.out.space()
	}
}

func (r *renderer) edgeSpace(inner string) {
	if inner != "" && strings.TrimSpace(inner) == "" {
		r.out.space()
	}
}

func (r *renderer) inlineCode(n *html.Node) {
	code := rawText(n)
	if strings.TrimSpace(code) == "" {
		return
	}
	code = strings.ReplaceAll(code, "\n", " ")
	fence := "`"
	if strings.Contains(code, "`") {
		fence = strings.Repeat("`", longestRun(code, '`')+1)
		code = " " + code + " "
	}
	r.out.write(fence + code + fence)
}

func (r *renderer) anchor(n *html.Node) {
	inner := r.renderInline(n)
	text := flatten(inner)
	href := strings.TrimSpace(attr(n, "href"))
	if !r.cfg.IncludeLinks || href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		if text == "" {
			r.edgeSpace(inner)
			return
		}
		r.emit(inner, text)
		return
	}
	target := r.resolve(href)
	if text == "" || text == href || text == target {
		r.emit(inner, "<"+target+">")
		return
	}
	r.emit(inner, "["+text+"]("+target+")")
}

func (r *renderer) image(n *html.Node) {
	alt := strings.TrimSpace(spaceRun.ReplaceAllString(attr(n, "alt"), " "))
	src := strings.TrimSpace(attr(n, "src"))
	if !r.cfg.IncludeLinks || src == "" {
		if alt != "" {
			r.text(alt)
		}
		return
	}
	r.out.write("![" + alt + "](" + r.resolve(src) + ")")
}

func (r *renderer) resolve(href string) string {
	if r.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return r.base.ResolveReference(ref).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// rawText concatenates the text beneath n, turning <br> into newlines.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// flatten joins an inline fragment onto one line and trims its edges.
func flatten(s string) string {
	lines := strings.Split(s, "\n")
	parts := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t\r\n") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t\r\n") != s
}

func longestRun(s string, ch byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			cur++
			if cur > best {
				best = cur
			}
			continue
		}
		cur = 0
	}
	return best
}
