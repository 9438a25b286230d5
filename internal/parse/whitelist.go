package parse

import "github.com/cwbudde/minify-selectors/internal/config"

// Designations an attribute value can carry. The whitelist maps attribute
// names to one of these; the value is then dispatched accordingly.
const (
	designationClass    = "class"
	designationID       = "id"
	designationSelector = "selector"
	designationAnchor   = "anchor"
	designationStyle    = "style"
	designationScript   = "script"
)

// attributeWhitelist lists the HTML/SVG attributes whose values reference
// classes, ids, selectors, URLs, inline styles or inline scripts. Names are
// lowercase; lookups lowercase HTML attribute names first. The table is
// immutable; per-run extensions live in Config.CustomAttributes.
var attributeWhitelist = map[string]string{
	"class": designationClass,

	"id":               designationID,
	"aria-controls":    designationID,
	"aria-describedby": designationID,
	"aria-labelledby":  designationID,
	"for":              designationID,
	"form":             designationID,
	"headers":          designationID,
	"itemref":          designationID,
	"list":             designationID,

	"href":       designationAnchor,
	"xlink:href": designationAnchor,

	"fill":  designationStyle,
	"style": designationStyle,

	"onabort":                    designationScript,
	"onactivate":                 designationScript,
	"onafterprint":               designationScript,
	"onauxclick":                 designationScript,
	"onbeforeinput":              designationScript,
	"onbeforematch":              designationScript,
	"onbeforeprint":              designationScript,
	"onbeforeunload":             designationScript,
	"onbegin":                    designationScript,
	"onblur":                     designationScript,
	"oncancel":                   designationScript,
	"oncanplay":                  designationScript,
	"oncanplaythrough":           designationScript,
	"onchange":                   designationScript,
	"onclick":                    designationScript,
	"onclose":                    designationScript,
	"oncontextlost":              designationScript,
	"oncontextmenu":              designationScript,
	"oncontextrestored":          designationScript,
	"oncopy":                     designationScript,
	"oncuechange":                designationScript,
	"oncut":                      designationScript,
	"ondblclick":                 designationScript,
	"ondrag":                     designationScript,
	"ondragend":                  designationScript,
	"ondragenter":                designationScript,
	"ondragexit":                 designationScript,
	"ondragleave":                designationScript,
	"ondragover":                 designationScript,
	"ondragstart":                designationScript,
	"ondrop":                     designationScript,
	"ondurationchange":           designationScript,
	"onemptied":                  designationScript,
	"onend":                      designationScript,
	"onended":                    designationScript,
	"onerror":                    designationScript,
	"onfocus":                    designationScript,
	"onfocusin":                  designationScript,
	"onfocusout":                 designationScript,
	"onformdata":                 designationScript,
	"onhashchange":               designationScript,
	"oninput":                    designationScript,
	"oninvalid":                  designationScript,
	"onkeydown":                  designationScript,
	"onkeypress":                 designationScript,
	"onkeyup":                    designationScript,
	"onlanguagechange":           designationScript,
	"onload":                     designationScript,
	"onloadeddata":               designationScript,
	"onloadedmetadata":           designationScript,
	"onloadstart":                designationScript,
	"onmessage":                  designationScript,
	"onmessageerror":             designationScript,
	"onmousedown":                designationScript,
	"onmouseenter":               designationScript,
	"onmouseleave":               designationScript,
	"onmousemove":                designationScript,
	"onmouseout":                 designationScript,
	"onmouseover":                designationScript,
	"onmouseup":                  designationScript,
	"onmousewheel":               designationScript,
	"onoffline":                  designationScript,
	"ononline":                   designationScript,
	"onpagehide":                 designationScript,
	"onpageshow":                 designationScript,
	"onpaste":                    designationScript,
	"onpause":                    designationScript,
	"onplay":                     designationScript,
	"onplaying":                  designationScript,
	"onpopstate":                 designationScript,
	"onprogress":                 designationScript,
	"onratechange":               designationScript,
	"onrejectionhandled":         designationScript,
	"onrepeat":                   designationScript,
	"onresize":                   designationScript,
	"onscroll":                   designationScript,
	"onscrollend":                designationScript,
	"onsearch":                   designationScript,
	"onsecuritypolicyviolation":  designationScript,
	"onseeked":                   designationScript,
	"onseeking":                  designationScript,
	"onselect":                   designationScript,
	"onshow":                     designationScript,
	"onslotchange":               designationScript,
	"onstalled":                  designationScript,
	"onstorage":                  designationScript,
	"onsubmit":                   designationScript,
	"onsuspend":                  designationScript,
	"ontimeupdate":               designationScript,
	"ontoggle":                   designationScript,
	"onunhandledrejection":       designationScript,
	"onunload":                   designationScript,
	"onvolumechange":             designationScript,
	"onwaiting":                  designationScript,
	"onwebkitanimationend":       designationScript,
	"onwebkitanimationiteration": designationScript,
	"onwebkitanimationstart":     designationScript,
	"onwheel":                    designationScript,
}

// lookupAttribute resolves an attribute name to its designation. Custom
// attributes from the configuration shadow the built-in table.
func lookupAttribute(name string, cfg *config.Config) (string, bool) {
	if cfg != nil && cfg.CustomAttributes != nil {
		if kind, ok := cfg.CustomAttributes[name]; ok {
			return kind, true
		}
	}
	kind, ok := attributeWhitelist[name]
	return kind, ok
}
