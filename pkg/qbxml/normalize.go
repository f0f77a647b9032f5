package qbxml

import (
	"html"
	"strings"
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
	// Responses have been seen escaped twice and wrapped once on top of that.
	maxUnwrapPasses = 4
)

// Normalize undoes the transport damage some agents apply to a response: a
// payload that arrives entity-escaped, wrapped in CDATA, or both. It is
// applied repeatedly until the text stops changing.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	for i := 0; i < maxUnwrapPasses; i++ {
		next := s
		if looksEscaped(next) {
			next = html.UnescapeString(next)
		}
		next = unwrapCDATA(next)
		next = strings.TrimSpace(next)
		if next == s {
			break
		}
		s = next
	}
	return stripInnerDeclarations(s)
}

// looksEscaped is true when the payload carries no markup of its own but does
// carry escaped markup. A literal leading declaration does not count as markup.
func looksEscaped(s string) bool {
	s = skipLeadingDeclaration(s)
	if strings.HasPrefix(s, "&lt;") || strings.HasPrefix(s, "&amp;lt;") {
		return true
	}
	return !strings.Contains(s, "<") && (strings.Contains(s, "&lt;") || strings.Contains(s, "&amp;lt;"))
}

func skipLeadingDeclaration(s string) string {
	if !strings.HasPrefix(s, "<?xml") {
		return s
	}
	end := strings.Index(s, "?>")
	if end < 0 {
		return s
	}
	return strings.TrimSpace(s[end+2:])
}

// unwrapCDATA replaces every CDATA section whose content is markup with that
// content. Sections holding plain text are left for the XML decoder.
func unwrapCDATA(s string) string {
	var b strings.Builder
	rest := s
	changed := false
	for {
		start := strings.Index(rest, cdataOpen)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(cdataOpen):], cdataClose)
		if end < 0 {
			break
		}
		end += start + len(cdataOpen)
		inner := rest[start+len(cdataOpen) : end]
		trimmed := strings.TrimSpace(inner)
		b.WriteString(rest[:start])
		if strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "&lt;") {
			b.WriteString(trimmed)
			changed = true
		} else {
			b.WriteString(rest[start : end+len(cdataClose)])
		}
		rest = rest[end+len(cdataClose):]
	}
	if !changed {
		return s
	}
	b.WriteString(rest)
	return b.String()
}

// stripInnerDeclarations drops <?xml ...?> declarations that ended up past the
// start of the document after unwrapping.
func stripInnerDeclarations(s string) string {
	const decl = "<?xml"
	first := strings.Index(s, decl)
	if first < 0 {
		return s
	}
	var b strings.Builder
	pos := 0
	if first == 0 {
		end := strings.Index(s, "?>")
		if end < 0 {
			return s
		}
		b.WriteString(s[:end+2])
		pos = end + 2
	}
	for {
		i := strings.Index(s[pos:], decl)
		if i < 0 {
			b.WriteString(s[pos:])
			break
		}
		i += pos
		end := strings.Index(s[i:], "?>")
		if end < 0 {
			b.WriteString(s[pos:])
			break
		}
		b.WriteString(s[pos:i])
		pos = i + end + 2
	}
	return b.String()
}
