// Package parse locates and rewrites class and id selector occurrences in
// CSS, HTML/SVG and JavaScript sources.
//
// Each file type gets a set of passes over the text. The passes share one
// site-recognition implementation between the two pipeline modes: during
// the read pass every recognised name is recorded in the registry, during
// the write pass it is replaced with its assigned encoding. Unrecognised or
// malformed regions are always emitted verbatim; no input aborts a file.
//
// HTML delegates into embedded styles and scripts, JavaScript delegates
// into selector strings and HTML fragments, and attribute values dispatch
// on the whitelist. Delegation depth is capped; anything nested deeper is
// treated as inert text.
package parse

import (
	"strings"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/registry"
)

// maxDelegationDepth bounds recursive delegation between file types
// (HTML → JS → HTML via innerHTML can loop).
const maxDelegationDepth = 4

// CSS analyses or rewrites a stylesheet, depending on cfg.Step.
func CSS(src string, sel *registry.Selectors, cfg *config.Config) string {
	return processCSS(src, sel, cfg, 0, registry.UsageStyle)
}

// HTML analyses or rewrites an HTML or SVG document.
func HTML(src string, sel *registry.Selectors, cfg *config.Config) string {
	return processHTML(src, sel, cfg, 0)
}

// JS analyses or rewrites a script.
func JS(src string, sel *registry.Selectors, cfg *config.Config) string {
	return processJS(src, sel, cfg, 0)
}

// encodedName records or substitutes one selector occurrence. key carries
// its sigil and is stored unescaped. The returned text never includes the
// sigil. During the write pass a selector without an assigned replacement
// (unknown, or a legitimately skipped markup-only class) falls back to its
// original name.
func encodedName(key string, usage registry.Usage, sel *registry.Selectors, cfg *config.Config) string {
	if cfg.Step == config.WritingToFiles {
		if replacement, ok := sel.Lookup(key); ok {
			return replacement
		}
		return key[1:]
	}
	sel.Add(key, usage)
	return key[1:]
}

// leadingQuote returns the quote byte if s starts with one.
func leadingQuote(s string) byte {
	if s != "" && (s[0] == '\'' || s[0] == '"' || s[0] == '`') {
		return s[0]
	}
	return 0
}

// stripQuotes removes a surrounding quote pair, returning the inner text
// and the quote byte (0 when s was not quoted).
func stripQuotes(s string) (string, byte) {
	quote := leadingQuote(s)
	if quote == 0 || len(s) < 2 {
		return s, 0
	}
	return s[1 : len(s)-1], quote
}

// processTokenString rewrites a whitespace-separated list of bare selector
// names, as found in class/id attribute values and class-list arguments.
// The value may arrive with its string delimiters; they are preserved.
// Tokens carrying a prefixed marker are left for the marker pass.
func processTokenString(value string, sel *registry.Selectors, cfg *config.Config, sigil byte, usage registry.Usage) string {
	inner, quote := stripQuotes(value)

	var b strings.Builder
	if quote != 0 {
		b.WriteByte(quote)
	}
	for i := 0; i < len(inner); {
		if isSpaceByte(inner[i]) {
			b.WriteByte(inner[i])
			i++
			continue
		}
		j := i
		for j < len(inner) && !isSpaceByte(inner[j]) {
			j++
		}
		token := inner[i:j]
		if containsPrefixedMarker(token) || !isValidName(token) {
			b.WriteString(token)
		} else {
			b.WriteString(encodedName(string(sigil)+decodeCSSEscapes(token), usage, sel, cfg))
		}
		i = j
	}
	if quote != 0 {
		b.WriteByte(quote)
	}
	return b.String()
}

// processAnchorLinks rewrites the fragment of an internal URL. Absolute
// http(s) and protocol-relative URLs are left alone; everything before the
// first "#" is preserved bytewise. The value may be quoted.
func processAnchorLinks(value string, sel *registry.Selectors, cfg *config.Config) string {
	inner, quote := stripQuotes(value)

	out := inner
	if !strings.HasPrefix(inner, "http://") && !strings.HasPrefix(inner, "https://") &&
		!strings.HasPrefix(inner, "//") {
		if hash := strings.IndexByte(inner, '#'); hash >= 0 {
			url, fragment := inner[:hash], inner[hash+1:]
			if fragment != "" && !strings.Contains(fragment, "#") && isValidName(fragment) {
				out = url + "#" + encodedName("#"+decodeCSSEscapes(fragment), registry.UsageAnchor, sel, cfg)
			}
		}
	}

	if quote == 0 {
		return out
	}
	return string(quote) + out + string(quote)
}

// Prefixed markers force or suppress encoding at a site:
//
//	__class--NAME            encode .NAME, emit the bare encoding
//	__id--NAME               encode #NAME, emit the bare encoding
//	.__--NAME / #__--NAME    encode the selector named by the sigil
//	[.#]?__ignore--NAME      never record; strip the marker on write
type prefixedMarker struct {
	sigil   byte // '.', '#', or 0
	context string
	name    string
	length  int // total bytes matched, sigil included
}

// matchPrefixedHead reports the length of a marker head ("[#.]?__ctx--")
// at src[i], or 0. Used by the CSS selector pass to avoid encoding marker
// text twice.
func matchPrefixedHead(src string, i int) int {
	j := i
	if j < len(src) && (src[j] == '.' || src[j] == '#') {
		j++
	}
	if !strings.HasPrefix(src[j:], "__") {
		return 0
	}
	j += 2
	for _, context := range []string{"class", "id", "ignore", ""} {
		if strings.HasPrefix(src[j:], context+"--") {
			return j + len(context) + 2 - i
		}
	}
	return 0
}

// matchPrefixedMarker matches a complete marker (head plus name) at src[i].
func matchPrefixedMarker(src string, i int) (prefixedMarker, bool) {
	var m prefixedMarker
	j := i
	if j < len(src) && (src[j] == '.' || src[j] == '#') {
		m.sigil = src[j]
		j++
	}
	if !strings.HasPrefix(src[j:], "__") {
		return m, false
	}
	j += 2
	matched := false
	for _, context := range []string{"class", "id", "ignore", ""} {
		if strings.HasPrefix(src[j:], context+"--") {
			m.context = context
			j += len(context) + 2
			matched = true
			break
		}
	}
	if !matched {
		return m, false
	}
	n := nameLen(src, j)
	if n == 0 {
		return m, false
	}
	m.name = src[j : j+n]
	m.length = j + n - i
	return m, true
}

func containsPrefixedMarker(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := matchPrefixedMarker(s, i); ok {
			return true
		}
	}
	return false
}

// processPrefixedSelectors rewrites marker sites in any file type. It runs
// after the language passes so that text they left alone (because it was a
// marker) is resolved exactly once.
func processPrefixedSelectors(src string, sel *registry.Selectors, cfg *config.Config) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		if c != '.' && c != '#' && c != '_' {
			b.WriteByte(c)
			i++
			continue
		}
		marker, ok := matchPrefixedMarker(src, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}

		name := strings.TrimSpace(marker.name)
		switch {
		case marker.context == "class":
			b.WriteString(encodedName("."+decodeCSSEscapes(name), registry.UsagePrefix, sel, cfg))
		case marker.context == "id":
			b.WriteString(encodedName("#"+decodeCSSEscapes(name), registry.UsagePrefix, sel, cfg))
		case marker.context == "ignore":
			// Never recorded; the marker is stripped and the bare name
			// kept, sigil included when one was written.
			if marker.sigil != 0 {
				b.WriteByte(marker.sigil)
			}
			b.WriteString(name)
		case marker.sigil != 0:
			key := string(marker.sigil) + decodeCSSEscapes(name)
			b.WriteByte(marker.sigil)
			b.WriteString(encodedName(key, registry.UsagePrefix, sel, cfg))
		default:
			// "__--name" with no sigil names no selector kind; left as is.
			b.WriteString(src[i : i+marker.length])
		}
		i += marker.length
	}
	return b.String()
}
