package parse

import "testing"

func TestCSSSelectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "classes and ids allocate from independent counters",
			in:   ".foo { } .bar, #baz { }",
			want: ".a { } .b, #a { }",
		},
		{
			name: "declaration bodies are never rewritten",
			in:   ".foo { color: #bar; background: .5em; }",
			want: ".a { color: #bar; background: .5em; }",
		},
		{
			name: "combinators and pseudo classes",
			in:   ".menu > .item:hover, #nav .menu { }",
			want: ".a > .b:hover, #a .a { }",
		},
		{
			name: "comments shield selectors",
			in:   "/* .ignored */ .foo { } /* #also-ignored */",
			want: "/* .ignored */ .a { } /* #also-ignored */",
		},
		{
			name: "nested rules are descended into",
			in:   ".parent {\n\t.child { color: blue; }\n}",
			want: ".a {\n\t.b { color: blue; }\n}",
		},
		{
			name: "declarations beside nested rules are never rewritten",
			in:   ".btn { color: #fff; &:hover { } }",
			want: ".a { color: #fff; &:hover { } }",
		},
		{
			name: "declarations after nested rules are never rewritten",
			in:   ".card { .title { } background: #eee }",
			want: ".a { .b { } background: #eee }",
		},
		{
			name: "import arguments are untouched",
			in:   "@import url(\"theme.css\");\n@import 'print.css';\n.foo { }",
			want: "@import url(\"theme.css\");\n@import 'print.css';\n.a { }",
		},
		{
			name: "escaped selector names normalise to one key",
			in:   ".fo\\6F { } .foo { }",
			want: ".a{ } .a { }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "css", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCSSAttributeSelectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "class and id attribute values",
			in:   `[class="foo"] { } [id=bar] { }`,
			want: `[class="a"] { } [id=a] { }`,
		},
		{
			name: "tilde operator",
			in:   `[class~="foo"] { }`,
			want: `[class~="a"] { }`,
		},
		{
			name: "unlisted attribute is untouched",
			in:   `[data-x="foo"] { }`,
			want: `[data-x="foo"] { }`,
		},
		{
			name: "case insensitive flag aborts replacement",
			in:   `[class="foo" i] { }`,
			want: `[class="foo" i] { }`,
		},
		{
			name: "case sensitive flag is preserved",
			in:   `[class="foo" s] { }`,
			want: `[class="a" s] { }`,
		},
		{
			name: "incomplete attribute selector is untouched",
			in:   "[disabled] { }",
			want: "[disabled] { }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "css", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCSSFunctions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "url fragment is an anchor",
			in:   `.icon { fill: url(#gradient); }`,
			want: `.a { fill: url(#a); }`,
		},
		{
			name: "quoted url fragment",
			in:   `.icon { fill: url("#gradient"); }`,
			want: `.a { fill: url("#a"); }`,
		},
		{
			name: "external urls are untouched",
			in:   `.hero { background: url(https://cdn.example.com/bg.png#frag); }`,
			want: `.a { background: url(https://cdn.example.com/bg.png#frag); }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "css", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}
