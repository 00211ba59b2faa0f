// Package render turns chat message markdown into HTML or terminal output.
package render

import (
	"html"
	"net/url"
	"strings"
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// HTML renders the markdown subset used in chat messages.
//
// Block level, per line: "#", "##", "###" headers and "- " / "* " list items.
// A blank line is a paragraph boundary and every other newline a line break.
// Inline constructs bind in this order: code spans, links, bold, italic.
// Code span contents are never parsed further. All text is HTML-escaped, so plain
// text comes back unchanged apart from line breaks and the entities for &, < and >.
func HTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var b strings.Builder
	newlines := 0
	for i, line := range lines {
		if i > 0 {
			newlines++
		}
		if line == "" && i < len(lines)-1 {
			continue
		}
		b.WriteString(lineBreaks(newlines))
		newlines = 0
		b.WriteString(renderLine(line))
	}
	return b.String()
}

// lineBreaks renders a run of n newlines: each pair closes a paragraph, an odd one breaks the line
func lineBreaks(n int) string {
	s := strings.Repeat("</p><p>", n/2)
	if n%2 == 1 {
		s += "<br>"
	}
	return s
}

func renderLine(line string) string {
	if level, rest, ok := header(line); ok {
		tag := string(rune('0' + level))
		return "<h" + tag + ">" + renderInline(rest) + "</h" + tag + ">"
	}
	if indent, rest, ok := listItem(line); ok {
		return indent + "<li>" + renderInline(rest) + "</li>"
	}
	return renderInline(line)
}

func header(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 3 || level == len(line) || !isSpace(line[level]) {
		return 0, "", false
	}
	return level, strings.TrimLeft(line[level:], " \t"), true
}

func listItem(line string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	if len(trimmed) < 2 || (trimmed[0] != '-' && trimmed[0] != '*') || !isSpace(trimmed[1]) {
		return "", "", false
	}
	return indent, strings.TrimLeft(trimmed[1:], " \t"), true
}

// renderInline splits out code spans; everything between them goes on to link parsing
func renderInline(s string) string {
	var b strings.Builder
	for s != "" {
		open := strings.IndexByte(s, '`')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open+1:], '`')
		if end < 0 {
			break
		}
		end += open + 1
		b.WriteString(renderLinks(s[:open]))
		b.WriteString("<code>" + textEscaper.Replace(s[open+1:end]) + "</code>")
		s = s[end+1:]
	}
	b.WriteString(renderLinks(s))
	return b.String()
}

// renderLinks finds [text](url); emphasis never spans across a link
func renderLinks(s string) string {
	var b strings.Builder
	var pending strings.Builder
	rest := s
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			break
		}
		closeText := strings.IndexByte(rest[open+1:], ']')
		if closeText < 0 {
			break
		}
		closeText += open + 1
		if closeText+1 >= len(rest) || rest[closeText+1] != '(' {
			pending.WriteString(rest[:open+1])
			rest = rest[open+1:]
			continue
		}
		closeURL := strings.IndexByte(rest[closeText+2:], ')')
		if closeURL < 0 {
			break
		}
		closeURL += closeText + 2

		pending.WriteString(rest[:open])
		b.WriteString(renderEmphasis(pending.String()))
		pending.Reset()
		b.WriteString(link(rest[open+1:closeText], rest[closeText+2:closeURL]))
		rest = rest[closeURL+1:]
	}
	pending.WriteString(rest)
	b.WriteString(renderEmphasis(pending.String()))
	return b.String()
}

func link(text, target string) string {
	label := renderEmphasis(text)
	target = strings.TrimSpace(target)
	if !safeURL(target) {
		return label
	}
	return `<a href="` + html.EscapeString(target) + `" target="_blank">` + label + "</a>"
}

func safeURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

// renderEmphasis handles **bold**, __bold__, *italic* and _italic_, escaping everything else
func renderEmphasis(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '*' && c != '_' {
			j := i
			for j < len(s) && s[j] != '*' && s[j] != '_' {
				j++
			}
			b.WriteString(textEscaper.Replace(s[i:j]))
			i = j
			continue
		}

		if i+1 < len(s) && s[i+1] == c {
			if end := closingDelimiter(s, i, 2); end >= 0 {
				b.WriteString("<strong>" + renderEmphasis(s[i+2:end]) + "</strong>")
				i = end + 2
				continue
			}
		}
		if end := closingDelimiter(s, i, 1); end >= 0 {
			b.WriteString("<em>" + renderEmphasis(s[i+1:end]) + "</em>")
			i = end + 1
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// closingDelimiter returns the index of the delimiter run of length n closing the one opened at
// start, or -1. Content may not begin or end with a space, and "_" only delimits at word edges.
func closingDelimiter(s string, start, n int) int {
	c := s[start]
	from := start + n
	if from >= len(s) || isSpace(s[from]) {
		return -1
	}
	if c == '_' && start > 0 && isWordChar(s[start-1]) {
		return -1
	}

	for k := from; k+n <= len(s); k++ {
		if s[k] != c {
			continue
		}
		run := 1
		for k+run < len(s) && s[k+run] == c {
			run++
		}
		if run < n {
			continue
		}
		if n == 1 && run > 1 {
			// a nested double delimiter, skip it whole
			k += run - 1
			continue
		}
		if k == from || isSpace(s[k-1]) {
			k += run - 1
			continue
		}
		if c == '_' && k+n < len(s) && isWordChar(s[k+n]) {
			k += run - 1
			continue
		}
		return k
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}
