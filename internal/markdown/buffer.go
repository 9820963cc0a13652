package markdown

// mdBuffer accumulates Markdown and tracks enough of its tail to place
// spaces and block breaks without doubling them.
type mdBuffer struct {
	buf              []byte
	trailingNewlines int
	// inline buffers collect a fragment that continues an existing line.
	inline bool
}

func newBlockBuffer() *mdBuffer {
	return &mdBuffer{}
}

func newInlineBuffer() *mdBuffer {
	return &mdBuffer{inline: true}
}

func (m *mdBuffer) String() string {
	return string(m.buf)
}

func (m *mdBuffer) empty() bool {
	return len(m.buf) == 0
}

func (m *mdBuffer) write(s string) {
	if s == "" {
		return
	}
	m.buf = append(m.buf, s...)
	m.recount()
}

func (m *mdBuffer) recount() {
	n := 0
	for i := len(m.buf) - 1; i >= 0 && m.buf[i] == '\n'; i-- {
		n++
	}
	m.trailingNewlines = n
}

func (m *mdBuffer) atLineStart() bool {
	if m.empty() {
		return !m.inline
	}
	return m.trailingNewlines > 0
}

func (m *mdBuffer) endsWithSpace() bool {
	if m.empty() {
		return false
	}
	last := m.buf[len(m.buf)-1]
	return last == ' ' || last == '\t'
}

// space writes a single separating space unless one is already implied.
func (m *mdBuffer) space() {
	if m.atLineStart() || m.endsWithSpace() {
		return
	}
	m.write(" ")
}

func (m *mdBuffer) trimTrailingSpaces() {
	end := len(m.buf)
	for end > 0 && (m.buf[end-1] == ' ' || m.buf[end-1] == '\t') {
		end--
	}
	m.buf = m.buf[:end]
	m.recount()
}

func (m *mdBuffer) ensureLineBreak() {
	if m.empty() {
		return
	}
	m.trimTrailingSpaces()
	if m.trailingNewlines == 0 {
		m.write("\n")
	}
}

func (m *mdBuffer) ensureBlankLine() {
	if m.empty() {
		return
	}
	m.trimTrailingSpaces()
	for m.trailingNewlines < 2 {
		m.write("\n")
	}
}
