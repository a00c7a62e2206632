// Package extract implements the hyperlink extraction grammar the analyze
// stage drives over a fetched page body. It is deliberately not a full
// HTML parser: it is a single compiled regex plus a handful of string
// normalization rules, matched against the literal grammar this system's
// design prescribes so its edge cases (protocol-relative links, bare
// slashes, embedded javascript: hrefs) resolve exactly the way the
// downstream tests expect.
package extract

import (
	"regexp"
	"strings"
)

// anchorHref matches the href attribute value of a tag opening with "<a"
// (an anchor tag); <link> tags are not matched. Go's
// regexp engine (RE2) has no negative lookahead, so unlike the original
// `(?!javascript:)` grammar this pattern matches every href and the
// javascript: exclusion is applied afterward in Extract; the net result
// (a javascript: link is never emitted, and the search silently continues
// past it) is identical.
var anchorHref = regexp.MustCompile(`<a[^>]+href=["'](.*?)["']`)

const javascriptPrefix = "javascript:"

// Emit is called once per normalized URL found in a body, in document
// order. source is the same body being scanned; offset is the index
// within it where the raw href value began.
type Emit func(source string, offset int, url string)

// Extractor drives the resolve loop described on Extract. It holds no
// per-call state, so a single Extractor may be reused (and shared)
// across concurrent Extract calls; the regex is compiled once at
// package init rather than once per call.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor { return &Extractor{} }

// Extract scans source for anchor hrefs starting at position 0, emitting
// each normalized URL via emit in document order, and returns the number
// emitted. The scan position always advances (either past a match or by
// one byte when nothing matches), so Extract is guaranteed to terminate.
func (e *Extractor) Extract(source string, emit Emit) int {
	hostName := hostNameOf(source)
	pos := 0
	count := 0

	for pos < len(source) {
		loc := anchorHref.FindStringSubmatchIndex(source[pos:])
		if loc == nil {
			pos++
			continue
		}

		hrefStart, hrefEnd := pos+loc[2], pos+loc[3]
		matchEnd := pos + loc[1]
		raw := source[hrefStart:hrefEnd]

		if strings.HasPrefix(raw, javascriptPrefix) {
			pos = matchEnd
			continue
		}

		emit(source, hrefStart, normalize(raw, hostName))
		count++
		pos = matchEnd
	}

	return count
}

// hostNameOf recovers the implicit host name used to resolve
// root-relative links: the substring before the first '/' of the body's
// first line (the line up to the first '\r').
func hostNameOf(source string) string {
	firstLine := source
	if i := strings.IndexByte(source, '\r'); i >= 0 {
		firstLine = source[:i]
	}
	if i := strings.IndexByte(firstLine, '/'); i >= 0 {
		return firstLine[:i]
	}
	return firstLine
}

// normalize applies the four-way link normalization: single-slash
// absolute paths and the bare "/" resolve against hostName,
// protocol-relative links drop their leading "//" and one trailing "/",
// explicit http(s) links drop their scheme, and everything else passes
// through unchanged.
func normalize(raw, hostName string) string {
	switch {
	case isRootRelative(raw):
		if raw == "/" {
			return hostName
		}
		return hostName + raw
	case strings.HasPrefix(raw, "//"):
		stripped := strings.TrimSuffix(raw[2:], "/")
		return stripped
	case strings.HasPrefix(raw, "http://"):
		return raw[len("http://"):]
	case strings.HasPrefix(raw, "https://"):
		return raw[len("https://"):]
	default:
		return raw
	}
}

// isRootRelative reports whether raw is exactly "/" or a single leading
// slash followed by a non-slash character (i.e. not protocol-relative).
func isRootRelative(raw string) bool {
	if raw == "/" {
		return true
	}
	return len(raw) >= 2 && raw[0] == '/' && raw[1] != '/'
}
