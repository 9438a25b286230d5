package parse

import (
	"strings"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/registry"
)

// processCSS runs the stylesheet passes: rule selectors, attribute
// selectors, url() functions, then prefixed markers. usage is the usage
// recorded for rule selectors — UsageStyle for real stylesheets and
// embeds, UsageSelectorString when the text is a selector-string value.
func processCSS(src string, sel *registry.Selectors, cfg *config.Config, depth int, usage registry.Usage) string {
	if depth > maxDelegationDepth {
		return src
	}
	src = processCSSSelectors(src, sel, cfg, usage)
	src = processCSSAttributes(src, sel, cfg, depth)
	src = processCSSFunctions(src, sel, cfg)
	return processPrefixedSelectors(src, sel, cfg)
}

// copyThrough copies src[i:] up to and including the first occurrence of
// end at or after the offset from, or the rest of src when end is missing.
// It returns the index after the copied span.
func copyThrough(b *strings.Builder, src string, i, from int, end string) int {
	stop := strings.Index(src[from:], end)
	if stop < 0 {
		b.WriteString(src[i:])
		return len(src)
	}
	stop = from + stop + len(end)
	b.WriteString(src[i:stop])
	return stop
}

// processCSSSelectors rewrites "#name" and ".name" tokens in rule
// selectors. Declaration bodies, attribute selectors, comments, @import
// arguments and prefixed-marker heads are copied verbatim so that hex
// colors, units, urls and marker text are never mistaken for selectors.
func processCSSSelectors(src string, sel *registry.Selectors, cfg *config.Config, usage registry.Usage) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '/' && strings.HasPrefix(src[i:], "/*"):
			i = copyThrough(&b, src, i, i+2, "*/")

		case c == '{':
			end := matchingBrace(src, i)
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteByte('{')
			b.WriteString(processCSSBlock(src[i+1:end], sel, cfg, usage))
			b.WriteByte('}')
			i = end + 1

		case c == '[':
			i = copyThrough(&b, src, i, i+1, "]")

		case c == '@' && strings.HasPrefix(src[i:], "@import"):
			i = copyImportArgument(&b, src, i)

		case c == '.' || c == '#' || c == '_':
			if head := matchPrefixedHead(src, i); head > 0 {
				b.WriteString(src[i : i+head])
				i += head
				continue
			}
			if c == '_' {
				b.WriteByte(c)
				i++
				continue
			}
			n := nameLen(src, i+1)
			if n == 0 {
				b.WriteByte(c)
				i++
				continue
			}
			key := string(c) + decodeCSSEscapes(src[i+1:i+1+n])
			b.WriteByte(c)
			b.WriteString(encodedName(key, usage, sel, cfg))
			i += 1 + n

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// skipCSSString returns the index just past the quoted string starting at
// src[i], honouring backslash escapes.
func skipCSSString(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		if src[j] == '\\' {
			j++
			continue
		}
		if src[j] == quote {
			return j + 1
		}
	}
	return len(src)
}

// matchingBrace returns the index of the "}" closing the "{" at src[i],
// stepping over comments and quoted strings, or -1 when unbalanced.
func matchingBrace(src string, i int) int {
	depth := 0
	for j := i; j < len(src); {
		switch src[j] {
		case '/':
			if strings.HasPrefix(src[j:], "/*") {
				stop := strings.Index(src[j+2:], "*/")
				if stop < 0 {
					return -1
				}
				j += 2 + stop + 2
				continue
			}
			j++
		case '"', '\'':
			j = skipCSSString(src, j)
		case '{':
			depth++
			j++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
			j++
		default:
			j++
		}
	}
	return -1
}

// nextBlockDelimiter finds the next ";" or "{" in body at the current
// nesting level, stepping over comments and strings. Returns -1 when the
// rest of the body is a trailing declaration.
func nextBlockDelimiter(body string, i int) int {
	for j := i; j < len(body); {
		switch body[j] {
		case '/':
			if strings.HasPrefix(body[j:], "/*") {
				stop := strings.Index(body[j+2:], "*/")
				if stop < 0 {
					return -1
				}
				j += 2 + stop + 2
				continue
			}
			j++
		case '"', '\'':
			j = skipCSSString(body, j)
		case ';', '{':
			return j
		default:
			j++
		}
	}
	return -1
}

// processCSSBlock rewrites one rule body. Declaration spans are copied
// verbatim so their values ("#fff" colors, ".5em" lengths) are never
// scanned for selectors; only the selector heads of nested rules are
// processed, their bodies recursively.
func processCSSBlock(body string, sel *registry.Selectors, cfg *config.Config, usage registry.Usage) string {
	var b strings.Builder
	for i := 0; i < len(body); {
		next := nextBlockDelimiter(body, i)
		if next < 0 {
			b.WriteString(body[i:])
			break
		}
		if body[next] == ';' {
			b.WriteString(body[i : next+1])
			i = next + 1
			continue
		}

		// A nested rule: the text before the brace is its selector head.
		b.WriteString(processCSSSelectors(body[i:next], sel, cfg, usage))
		end := matchingBrace(body, next)
		if end < 0 {
			b.WriteString(body[next:])
			break
		}
		b.WriteByte('{')
		b.WriteString(processCSSBlock(body[next+1:end], sel, cfg, usage))
		b.WriteByte('}')
		i = end + 1
	}
	return b.String()
}

// copyImportArgument copies an @import at-rule's url or string argument
// verbatim. Import paths are URLs to other stylesheets, not selectors.
func copyImportArgument(b *strings.Builder, src string, i int) int {
	j := i + len("@import")
	start := j
	for j < len(src) && isSpaceByte(src[j]) {
		j++
	}
	if j == start || j >= len(src) {
		b.WriteString(src[i:j])
		return j
	}
	switch {
	case strings.HasPrefix(src[j:], "url("):
		return copyThrough(b, src, i, j+4, ")")
	case src[j] == '"':
		return copyThrough(b, src, i, j+1, "\"")
	case src[j] == '\'':
		return copyThrough(b, src, i, j+1, "'")
	}
	b.WriteString(src[i:j])
	return j
}

// cssAttributeSelector is the parsed form of "[name op 'value' flag]".
type cssAttributeSelector struct {
	name   string // raw, escapes intact
	op     string
	quote  string // opening quote text, possibly backslash-prefixed
	value  string
	spacer string
	flag   string
	end    int // index just past the closing bracket
}

// parseCSSAttributeSelector parses the span starting at src[i] (a "[").
// A false return means the span is not a value-carrying attribute selector
// and must be left alone.
func parseCSSAttributeSelector(src string, i int) (cssAttributeSelector, bool) {
	var a cssAttributeSelector
	j := i + 1
	for j < len(src) && isSpaceByte(src[j]) {
		j++
	}

	nameStart := j
	for j < len(src) {
		c := src[j]
		if c == '\\' {
			n := escapeLen(src, j)
			if n == 0 {
				return a, false
			}
			j += n
			continue
		}
		if isSpaceByte(c) || strings.IndexByte(">\"'|:^$*~=[]", c) >= 0 {
			break
		}
		j++
	}
	if j == nameStart {
		return a, false
	}
	a.name = src[nameStart:j]

	for j < len(src) && isSpaceByte(src[j]) {
		j++
	}
	opStart := j
	if j < len(src) && src[j] == '~' {
		j++
	}
	if j >= len(src) || src[j] != '=' {
		return a, false
	}
	j++
	a.op = src[opStart:j]

	for j < len(src) && isSpaceByte(src[j]) {
		j++
	}
	quoteStart := j
	var quoteChar byte
	if j < len(src) && src[j] == '\\' && j+1 < len(src) && (src[j+1] == '"' || src[j+1] == '\'') {
		quoteChar = src[j+1]
		j += 2
	} else if j < len(src) && (src[j] == '"' || src[j] == '\'') {
		quoteChar = src[j]
		j++
	}
	a.quote = src[quoteStart:j]

	valueStart := j
	if quoteChar != 0 {
		for j < len(src) && src[j] != '"' && src[j] != '\'' {
			if src[j] == '\\' {
				n := escapeLen(src, j)
				if n == 0 {
					return a, false
				}
				j += n
				continue
			}
			j++
		}
	} else {
		n := nameLen(src, j)
		if n == 0 {
			return a, false
		}
		j += n
	}
	a.value = src[valueStart:j]

	if quoteChar != 0 {
		if j < len(src) && src[j] == '\\' {
			j++
		}
		if j >= len(src) || src[j] != quoteChar {
			return a, false
		}
		j++
	}

	spacerStart := j
	for j < len(src) && isSpaceByte(src[j]) {
		j++
	}
	a.spacer = src[spacerStart:j]

	if j < len(src) && strings.IndexByte("IiSs", src[j]) >= 0 {
		a.flag = src[j : j+1]
		j++
		for j < len(src) && isSpaceByte(src[j]) {
			j++
		}
	}

	if j >= len(src) || src[j] != ']' {
		return a, false
	}
	a.end = j + 1
	return a, true
}

// processCSSAttributes rewrites the values of whitelisted attribute
// selectors using the "=" or "~=" operators, e.g. [class="foo"]. The
// case-insensitive flag makes a match ambiguous, so such selectors are
// left untouched.
func processCSSAttributes(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		if c == '/' && strings.HasPrefix(src[i:], "/*") {
			i = copyThrough(&b, src, i, i+2, "*/")
			continue
		}
		if c != '[' {
			b.WriteByte(c)
			i++
			continue
		}

		attr, ok := parseCSSAttributeSelector(src, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}

		name := decodeCSSEscapes(attr.name)
		kind, listed := lookupAttribute(name, cfg)
		if !listed || attr.flag == "i" || attr.flag == "I" {
			b.WriteString(src[i:attr.end])
			i = attr.end
			continue
		}

		value := attr.value
		switch kind {
		case designationClass:
			value = processTokenString(value, sel, cfg, '.', registry.UsageStyle)
		case designationID:
			value = processTokenString(value, sel, cfg, '#', registry.UsageStyle)
		case designationSelector:
			value = processCSS(decodeCSSEscapes(value), sel, cfg, depth+1, registry.UsageSelectorString)
		case designationAnchor:
			value = processAnchorLinks(decodeCSSEscapes(value), sel, cfg)
		}

		b.WriteByte('[')
		b.WriteString(attr.name)
		b.WriteString(attr.op)
		b.WriteString(attr.quote)
		b.WriteString(value)
		b.WriteString(attr.quote)
		b.WriteString(attr.spacer)
		b.WriteString(attr.flag)
		b.WriteByte(']')
		i = attr.end
	}
	return b.String()
}

// processCSSFunctions rewrites url() arguments, whose fragments are anchor
// links. Other CSS functions never carry selectors.
func processCSSFunctions(src string, sel *registry.Selectors, cfg *config.Config) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		if c == '/' && strings.HasPrefix(src[i:], "/*") {
			i = copyThrough(&b, src, i, i+2, "*/")
			continue
		}
		if c != 'u' || !strings.HasPrefix(src[i:], "url(") || (i > 0 && isNameByte(src[i-1])) {
			b.WriteByte(c)
			i++
			continue
		}

		j := i + 4
		b.WriteString(src[i:j])
		for j < len(src) && isSpaceByte(src[j]) {
			b.WriteByte(src[j])
			j++
		}

		var quoteChar byte
		if j < len(src) && src[j] == '\\' && j+1 < len(src) && (src[j+1] == '"' || src[j+1] == '\'') {
			quoteChar = src[j+1]
			b.WriteString(src[j : j+2])
			j += 2
		} else if j < len(src) && (src[j] == '"' || src[j] == '\'') {
			quoteChar = src[j]
			b.WriteByte(src[j])
			j++
		}

		argStart := j
		if quoteChar != 0 {
			for j < len(src) && src[j] != quoteChar {
				j++
			}
		} else {
			for j < len(src) && !isSpaceByte(src[j]) && src[j] != ')' {
				j++
			}
		}
		b.WriteString(processAnchorLinks(src[argStart:j], sel, cfg))
		i = j
	}
	return b.String()
}
