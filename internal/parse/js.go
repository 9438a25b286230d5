package parse

import (
	"strings"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/registry"
)

// processJS runs the script passes: DOM API call arguments, property
// assignments, then prefixed markers.
func processJS(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	if depth > maxDelegationDepth {
		return src
	}
	src = processJSArguments(src, sel, cfg, depth)
	src = processJSProperties(src, sel, cfg, depth)
	return processPrefixedSelectors(src, sel, cfg)
}

// skipJSString returns the index just past the string literal starting at
// src[i] (a quote byte), honouring backslash escapes. Unterminated strings
// run to the end of the input.
func skipJSString(src string, i int) int {
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

// skipJSComment returns the index just past the comment starting at src[i],
// or i when src[i] does not start one. Single-line comments leave their
// terminating newline in place.
func skipJSComment(src string, i int) int {
	if strings.HasPrefix(src[i:], "/*") {
		stop := strings.Index(src[i+2:], "*/")
		if stop < 0 {
			return len(src)
		}
		return i + 2 + stop + 2
	}
	if strings.HasPrefix(src[i:], "//") {
		j := i + 2
		for j < len(src) && src[j] != '\n' && src[j] != '\r' {
			j++
		}
		return j
	}
	return i
}

// dotCallees are the member calls whose arguments carry selectors, longest
// first so prefixes never shadow longer names.
var dotCallees = []string{
	".getElementsByClassName",
	".insertAdjacentHTML",
	".querySelectorAll",
	".getElementById",
	".querySelector",
	".setAttribute",
	".closest",
	".matches",
}

var classListMethods = []string{"add", "remove", "contains", "replace", "toggle"}

// matchJSCallee matches one of the recognised callees at src[i] and returns
// its normalised name plus the number of bytes it spans. The opening paren
// is not part of the span; callers require it to follow immediately.
func matchJSCallee(src string, i int) (string, int, bool) {
	switch src[i] {
	case '.':
		for _, callee := range dotCallees {
			if strings.HasPrefix(src[i:], callee) {
				return callee[1:], len(callee), true
			}
		}
		if strings.HasPrefix(src[i:], ".classList") {
			j := i + len(".classList")
			for j < len(src) && isSpaceByte(src[j]) {
				j++
			}
			if j < len(src) && src[j] == '.' {
				j++
				for _, method := range classListMethods {
					if strings.HasPrefix(src[j:], method) {
						return "classList." + method, j + len(method) - i, true
					}
				}
			}
		}

	case 'h':
		if i > 0 && isNameByte(src[i-1]) {
			break
		}
		if strings.HasPrefix(src[i:], "history") {
			j := i + len("history")
			for j < len(src) && isSpaceByte(src[j]) {
				j++
			}
			if j < len(src) && src[j] == '.' {
				j++
				for _, method := range []string{"pushState", "replaceState"} {
					if strings.HasPrefix(src[j:], method) {
						return "history." + method, j + len(method) - i, true
					}
				}
			}
		}

	case 'w':
		if i > 0 && isNameByte(src[i-1]) {
			break
		}
		if strings.HasPrefix(src[i:], "window") {
			j := i + len("window")
			for j < len(src) && isSpaceByte(src[j]) {
				j++
			}
			if j >= len(src) || src[j] != '.' {
				break
			}
			j++
			if strings.HasPrefix(src[j:], "open") {
				return "window.open", j + len("open") - i, true
			}
			if strings.HasPrefix(src[j:], "location") {
				j += len("location")
				for j < len(src) && isSpaceByte(src[j]) {
					j++
				}
				if j < len(src) && src[j] == '.' {
					j++
					for _, method := range []string{"assign", "replace"} {
						if strings.HasPrefix(src[j:], method) {
							return "window.location." + method, j + len(method) - i, true
						}
					}
				}
			}
		}
	}
	return "", 0, false
}

// findArgumentsEnd returns the index of the call's closing paren, given i
// just past the opening one. Nested brackets, strings and comments are
// stepped over. Returns -1 for an unbalanced call.
func findArgumentsEnd(src string, i int) int {
	depth := 1
	for j := i; j < len(src); {
		switch c := src[j]; c {
		case '\'', '"', '`':
			j = skipJSString(src, j)
		case '/':
			if next := skipJSComment(src, j); next > j {
				j = next
			} else {
				j++
			}
		case '(':
			depth++
			j++
		case ')':
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

// jsArgument is one top-level argument of a call, located by its span in
// the argument string. quote is set when the argument is a lone string
// literal; innerStart/innerEnd then bound its content.
type jsArgument struct {
	start, end           int
	quote                byte
	innerStart, innerEnd int
}

func (a jsArgument) isString() bool { return a.quote != 0 }

// splitJSArguments splits an argument string on top-level commas and
// classifies each argument. Expressions, objects and arrays are located
// but never rewritten.
func splitJSArguments(args string) []jsArgument {
	var out []jsArgument
	start := 0
	depth := 0

	flush := func(end int) {
		s, e := start, end
		for s < e && isSpaceByte(args[s]) {
			s++
		}
		for e > s && isSpaceByte(args[e-1]) {
			e--
		}
		if s == e {
			return
		}
		arg := jsArgument{start: s, end: e}
		if c := args[s]; c == '\'' || c == '"' || c == '`' {
			if stop := skipJSString(args, s); stop == e && e-s >= 2 {
				arg.quote = c
				arg.innerStart = s + 1
				arg.innerEnd = e - 1
			}
		}
		out = append(out, arg)
	}

	for j := 0; j < len(args); {
		switch c := args[j]; c {
		case '\'', '"', '`':
			j = skipJSString(args, j)
		case '(', '[', '{':
			depth++
			j++
		case ')', ']', '}':
			depth--
			j++
		case ',':
			if depth == 0 {
				flush(j)
				start = j + 1
			}
			j++
		default:
			j++
		}
	}
	flush(len(args))
	return out
}

// spliceArgument replaces args[from:to] with replacement.
func spliceArgument(args string, from, to int, replacement string) string {
	return args[:from] + replacement + args[to:]
}

// processJSArguments rewrites the arguments of recognised DOM and history
// API calls. The whole argument list is escape-decoded up front; per-callee
// handling then decides which argument is a selector, a token list, markup
// or a URL. Comments and free-standing strings shield their contents.
func processJSArguments(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]

		if c == '/' {
			if next := skipJSComment(src, i); next > i {
				b.WriteString(src[i:next])
				i = next
				continue
			}
		}
		if c == '\'' || c == '"' || c == '`' {
			next := skipJSString(src, i)
			b.WriteString(src[i:next])
			i = next
			continue
		}
		if c != '.' && c != 'h' && c != 'w' {
			b.WriteByte(c)
			i++
			continue
		}

		callee, span, ok := matchJSCallee(src, i)
		if !ok || i+span >= len(src) || src[i+span] != '(' {
			b.WriteByte(c)
			i++
			continue
		}

		argsStart := i + span + 1
		for argsStart < len(src) && isSpaceByte(src[argsStart]) {
			argsStart++
		}
		end := findArgumentsEnd(src, argsStart)
		if end < 0 {
			b.WriteString(src[i : i+span])
			i += span
			continue
		}

		args := decodeJSEscapes(src[argsStart:end])
		b.WriteString(src[i:argsStart])
		b.WriteString(rewriteCallArguments(callee, args, sel, cfg, depth))
		i = end
	}
	return b.String()
}

func rewriteCallArguments(callee, args string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	switch callee {
	case "querySelector", "querySelectorAll", "closest", "matches":
		// Double backslashes in JS selector strings carry CSS escapes.
		args = strings.ReplaceAll(args, "\\\\", "\\")
		if leadingQuote(args) != 0 {
			args = processCSS(args, sel, cfg, depth+1, registry.UsageSelectorString)
		}

	case "getElementsByClassName":
		if leadingQuote(args) != 0 {
			args = processTokenString(args, sel, cfg, '.', registry.UsageScript)
		}

	case "getElementById":
		if leadingQuote(args) != 0 {
			args = processTokenString(args, sel, cfg, '#', registry.UsageScript)
		}

	case "setAttribute":
		parts := splitJSArguments(args)
		if len(parts) < 2 || !parts[0].isString() || !parts[1].isString() {
			break
		}
		name := strings.TrimSpace(args[parts[0].innerStart:parts[0].innerEnd])
		kind, listed := lookupAttribute(name, cfg)
		if !listed {
			break
		}
		value := args[parts[1].innerStart:parts[1].innerEnd]
		switch kind {
		case designationClass:
			value = processTokenString(value, sel, cfg, '.', registry.UsageScript)
		case designationID:
			value = processTokenString(value, sel, cfg, '#', registry.UsageScript)
		case designationSelector:
			value = processCSS(value, sel, cfg, depth+1, registry.UsageSelectorString)
		case designationAnchor:
			value = processAnchorLinks(value, sel, cfg)
		case designationStyle:
			value = processCSSFunctions(value, sel, cfg)
		case designationScript:
			value = processJS(value, sel, cfg, depth+1)
		}
		args = spliceArgument(args, parts[1].innerStart, parts[1].innerEnd, value)

	case "insertAdjacentHTML":
		parts := splitJSArguments(args)
		if len(parts) < 2 || !parts[1].isString() {
			break
		}
		markup := args[parts[1].innerStart:parts[1].innerEnd]
		if strings.Contains(markup, "</body>") {
			markup = processHTML(markup, sel, cfg, depth+1)
		} else {
			markup = processHTMLAttributes(markup, sel, cfg, depth+1)
		}
		args = spliceArgument(args, parts[1].innerStart, parts[1].innerEnd, markup)

	case "window.open", "window.location.assign", "window.location.replace":
		parts := splitJSArguments(args)
		if len(parts) < 1 {
			break
		}
		link := processAnchorLinks(args[parts[0].start:parts[0].end], sel, cfg)
		args = spliceArgument(args, parts[0].start, parts[0].end, link)

	case "history.pushState", "history.replaceState":
		parts := splitJSArguments(args)
		if len(parts) < 3 {
			break
		}
		link := processAnchorLinks(args[parts[2].start:parts[2].end], sel, cfg)
		args = spliceArgument(args, parts[2].start, parts[2].end, link)

	case "classList.add", "classList.remove", "classList.contains",
		"classList.replace", "classList.toggle":
		parts := splitJSArguments(args)
		offset := 0
		for _, part := range parts {
			if !part.isString() {
				continue
			}
			token := args[part.innerStart+offset : part.innerEnd+offset]
			if containsPrefixedMarker(token) || !isValidName(token) {
				continue
			}
			encoded := encodedName("."+decodeCSSEscapes(token), registry.UsageScript, sel, cfg)
			args = spliceArgument(args, part.innerStart+offset, part.innerEnd+offset, encoded)
			offset += len(encoded) - len(token)
		}
	}
	return args
}

// jsProperties are matched longest first; "window.location" alone is a
// plain URL sink, so only its fragment is ever rewritten.
var jsProperties = []string{
	"window.location.hash",
	"window.location.href",
	"window.location",
	".className",
	".innerHTML",
	".outerHTML",
	".classList",
	".id",
}

// matchJSProperty matches a property reference at src[i], including any
// classList accessor suffix ("[0]", ".value", ".item(...)"), and returns
// its normalised name and span.
func matchJSProperty(src string, i int) (string, int, bool) {
	for _, property := range jsProperties {
		if !strings.HasPrefix(src[i:], property) {
			continue
		}
		if property[0] != '.' && i > 0 && isNameByte(src[i-1]) {
			continue
		}
		span := len(property)
		if property == ".classList" {
			span += classListAccessorLen(src, i+span)
		}
		return property, span, true
	}
	return "", 0, false
}

// classListAccessorLen measures an optional "[n]", ".value" or ".item(...)"
// suffix at src[i].
func classListAccessorLen(src string, i int) int {
	switch {
	case i < len(src) && src[i] == '[':
		j := i + 1
		for j < len(src) && src[j] >= '0' && src[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(src) && src[j] == ']' {
			return j + 1 - i
		}
	case strings.HasPrefix(src[i:], ".value"):
		return len(".value")
	case strings.HasPrefix(src[i:], ".item("):
		end := findArgumentsEnd(src, i+len(".item("))
		if end >= 0 {
			return end + 1 - i
		}
	}
	return 0
}

// processJSProperties rewrites string values written to or compared with
// selector-bearing properties.
func processJSProperties(src string, sel *registry.Selectors, cfg *config.Config, depth int) string {
	var b strings.Builder
	for i := 0; i < len(src); {
		c := src[i]

		if c == '/' {
			if next := skipJSComment(src, i); next > i {
				b.WriteString(src[i:next])
				i = next
				continue
			}
		}
		if c == '\'' || c == '"' || c == '`' {
			next := skipJSString(src, i)
			b.WriteString(src[i:next])
			i = next
			continue
		}
		if c != '.' && c != 'w' {
			b.WriteByte(c)
			i++
			continue
		}

		property, span, ok := matchJSProperty(src, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}

		// Operator: one to three of = + - ! < >, whitespace around it.
		j := i + span
		for j < len(src) && isSpaceByte(src[j]) {
			j++
		}
		opStart := j
		for j < len(src) && j < opStart+3 && strings.IndexByte("=+-!<>", src[j]) >= 0 {
			j++
		}
		if j == opStart {
			b.WriteString(src[i : i+span])
			i += span
			continue
		}
		for j < len(src) && isSpaceByte(src[j]) {
			j++
		}

		if j >= len(src) || (src[j] != '\'' && src[j] != '"' && src[j] != '`') {
			b.WriteString(src[i : i+span])
			i += span
			continue
		}
		valueEnd := skipJSString(src, j)
		if valueEnd > len(src) {
			b.WriteString(src[i : i+span])
			i += span
			continue
		}

		value := decodeJSEscapes(src[j:valueEnd])
		switch {
		case property == ".id":
			value = processTokenString(value, sel, cfg, '#', registry.UsageScript)
		case property == ".className" || property == ".classList":
			value = processTokenString(value, sel, cfg, '.', registry.UsageScript)
		case property == ".innerHTML" || property == ".outerHTML":
			inner, quote := stripQuotes(value)
			if strings.Contains(inner, "</body>") {
				inner = processHTML(inner, sel, cfg, depth+1)
			} else {
				inner = processHTMLAttributes(inner, sel, cfg, depth+1)
			}
			value = string(quote) + inner + string(quote)
		default: // window.location and friends
			value = processAnchorLinks(value, sel, cfg)
		}

		b.WriteString(src[i:j])
		b.WriteString(value)
		i = valueEnd
	}
	return b.String()
}
