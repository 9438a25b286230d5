package parse

import (
	"strings"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/registry"
)

// processHTML runs the markup passes: whitelisted attribute values first,
// then embedded scripts and styles, then prefixed markers over the whole
// document.
func processHTML(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	if depth > maxDelegationDepth {
		return src
	}
	src = processHTMLAttributes(src, sel, cfg, depth)
	src = processHTMLScripts(src, sel, cfg, depth)
	src = processHTMLStyles(src, sel, cfg, depth)
	return processPrefixedSelectors(src, sel, cfg)
}

// matchTagBlock reports the length of the whole element span when src[i]
// opens the given tag ("<tag>" or "<tag ..."), up to and including its
// closing tag. Missing closers swallow the rest of the input.
func matchTagBlock(src string, i int, tag string) int {
	open := "<" + tag
	if !strings.HasPrefix(src[i:], open) {
		return 0
	}
	after := i + len(open)
	if after >= len(src) || (src[after] != '>' && !isSpaceByte(src[after])) {
		return 0
	}
	closing := "</" + tag + ">"
	stop := strings.Index(src[after:], closing)
	if stop < 0 {
		return len(src) - i
	}
	return after + stop + len(closing) - i
}

func isAttributeNameByte(c byte) bool {
	return !isSpaceByte(c) && c != 0 && c != '/' && c != '>' && c != '<' &&
		c != '"' && c != '\'' && c != '='
}

// htmlAttribute is one parsed "name = value" pair.
type htmlAttribute struct {
	name  string
	join  string // "=" with surrounding whitespace
	quote string // opening quote text, possibly backslash-prefixed
	value string
	end   int // index just past the value (and closing quote)
}

// parseHTMLAttribute parses an attribute pair starting at the name run
// beginning at src[i]. Only pairs with a value are of interest.
func parseHTMLAttribute(src string, i int) (htmlAttribute, bool) {
	var a htmlAttribute
	j := i
	for j < len(src) && isAttributeNameByte(src[j]) {
		j++
	}
	if j == i {
		return a, false
	}
	a.name = src[i:j]

	k := j
	for k < len(src) && isSpaceByte(src[k]) {
		k++
	}
	if k >= len(src) || src[k] != '=' {
		return a, false
	}
	k++
	for k < len(src) && isSpaceByte(src[k]) {
		k++
	}
	a.join = src[j:k]

	quoteStart := k
	var quoteChar byte
	if k < len(src) && src[k] == '\\' && k+1 < len(src) && (src[k+1] == '"' || src[k+1] == '\'') {
		quoteChar = src[k+1]
		k += 2
	} else if k < len(src) && (src[k] == '"' || src[k] == '\'') {
		quoteChar = src[k]
		k++
	}
	a.quote = src[quoteStart:k]

	valueStart := k
	if quoteChar != 0 {
		if len(a.quote) == 2 {
			// Backslash-prefixed quotes close with the same two bytes.
			stop := strings.Index(src[k:], a.quote)
			if stop < 0 {
				return a, false
			}
			a.value = src[k : k+stop]
			a.end = k + stop + 2
			return a, true
		}
		for k < len(src) && src[k] != quoteChar {
			if src[k] == '\\' && k+1 < len(src) {
				k += 2
				continue
			}
			k++
		}
		if k >= len(src) {
			return a, false
		}
		a.value = src[valueStart:k]
		a.end = k + 1
	} else {
		for k < len(src) {
			c := src[k]
			if isSpaceByte(c) || c == '\\' || c == '<' || c == '>' || c == '"' || c == '\'' || c == '=' {
				break
			}
			k++
		}
		if k == valueStart {
			return a, false
		}
		a.value = src[valueStart:k]
		a.end = k
	}
	return a, true
}

// processHTMLAttributes rewrites the values of whitelisted attributes.
// Comments, head bodies and style/code/script elements are copied verbatim
// so their contents are never misread as attributes; a code element still
// gets the attributes on its opening tag processed.
func processHTMLAttributes(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	if depth > maxDelegationDepth {
		return src
	}
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		if c == '<' {
			if strings.HasPrefix(src[i:], "<!--") {
				i = copyThrough(&b, src, i, i+4, "-->")
				continue
			}
			if n := matchTagBlock(src, i, "head"); n > 0 {
				b.WriteString(src[i : i+n])
				i += n
				continue
			}
			if n := matchTagBlock(src, i, "style"); n > 0 {
				b.WriteString(src[i : i+n])
				i += n
				continue
			}
			if n := matchTagBlock(src, i, "script"); n > 0 {
				b.WriteString(src[i : i+n])
				i += n
				continue
			}
			if n := matchTagBlock(src, i, "code"); n > 0 {
				// The body is literal example text, but the opening tag
				// may still carry whitelisted attributes.
				element := src[i : i+n]
				if gt := strings.IndexByte(element, '>'); gt >= 0 {
					b.WriteString("<code")
					b.WriteString(processHTMLAttributes(element[len("<code"):gt], sel, cfg, depth+1))
					b.WriteString(element[gt:])
				} else {
					b.WriteString(element)
				}
				i += n
				continue
			}
			b.WriteByte(c)
			i++
			continue
		}

		if !isAttributeNameByte(c) {
			b.WriteByte(c)
			i++
			continue
		}

		attr, ok := parseHTMLAttribute(src, i)
		if !ok {
			// Not a name=value pair; emit the name run and rescan after it.
			j := i
			for j < len(src) && isAttributeNameByte(src[j]) {
				j++
			}
			b.WriteString(src[i:j])
			i = j
			continue
		}

		kind, listed := lookupAttribute(strings.ToLower(attr.name), cfg)
		if !listed {
			b.WriteString(src[i:attr.end])
			i = attr.end
			continue
		}

		value := decodeHTMLEntities(attr.value)
		switch kind {
		case designationClass:
			value = processTokenString(value, sel, cfg, '.', registry.UsageMarkupClass)
		case designationID:
			value = processTokenString(value, sel, cfg, '#', registry.UsageMarkupID)
		case designationSelector:
			value = escapeCSSSyntaxChars(processCSS(value, sel, cfg, depth+1, registry.UsageSelectorString))
		case designationAnchor:
			value = processAnchorLinks(value, sel, cfg)
		case designationStyle:
			value = processCSSFunctions(value, sel, cfg)
		case designationScript:
			value = processJS(value, sel, cfg, depth+1)
		}

		b.WriteString(attr.name)
		b.WriteString(attr.join)
		b.WriteString(attr.quote)
		b.WriteString(value)
		b.WriteString(attr.quote)
		i = attr.end
	}
	return b.String()
}

// processHTMLScripts runs embedded script bodies through the JS passes.
func processHTMLScripts(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	return processEmbeddedElements(src, "script", func(body string) string {
		return processJS(body, sel, cfg, depth+1)
	})
}

// processHTMLStyles runs embedded style bodies through the CSS passes.
func processHTMLStyles(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	return processEmbeddedElements(src, "style", func(body string) string {
		return processCSS(body, sel, cfg, depth+1, registry.UsageStyle)
	})
}

// processEmbeddedElements rewrites the body of every <tag ...>...</tag>
// element with the given transform, leaving the tags themselves alone.
func processEmbeddedElements(src, tag string, transform func(string) string) string {
	openPrefix := "<" + tag
	closing := "</" + tag + ">"

	var b strings.Builder
	for i := 0; i < len(src); {
		if src[i] != '<' || !strings.HasPrefix(src[i:], openPrefix) {
			b.WriteByte(src[i])
			i++
			continue
		}
		gt := strings.IndexByte(src[i:], '>')
		if gt < 0 {
			b.WriteString(src[i:])
			break
		}
		openEnd := i + gt + 1
		tail := src[i+len(openPrefix) : openEnd-1]
		if tail != "" && !isSpaceByte(src[i+len(openPrefix)]) {
			// A longer tag name, e.g. <styleguide>.
			b.WriteString(src[i:openEnd])
			i = openEnd
			continue
		}
		stop := strings.Index(src[openEnd:], closing)
		if stop < 0 {
			b.WriteString(src[i:])
			break
		}
		b.WriteString(src[i:openEnd])
		b.WriteString(transform(src[openEnd : openEnd+stop]))
		b.WriteString(closing)
		i = openEnd + stop + len(closing)
	}
	return b.String()
}
