package parse

import "testing"

func TestJSSelectorArguments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "query selector strings are css",
			in:   `el.querySelector('.foo.bar'); el.classList.add("foo","bar");`,
			want: `el.querySelector('.a.b'); el.classList.add("a","b");`,
		},
		{
			name: "query selector all and closest and matches",
			in:   `a.querySelectorAll('.foo'); b.closest('#bar'); c.matches('.foo');`,
			want: `a.querySelectorAll('.a'); b.closest('#a'); c.matches('.a');`,
		},
		{
			name: "non literal arguments are untouched",
			in:   `el.querySelector(selector); el.classList.add(name, "foo");`,
			want: `el.querySelector(selector); el.classList.add(name, "a");`,
		},
		{
			name: "get element by id",
			in:   `document.getElementById('main-content');`,
			want: `document.getElementById('a');`,
		},
		{
			name: "get elements by class name",
			in:   `document.getElementsByClassName('foo bar');`,
			want: `document.getElementsByClassName('a b');`,
		},
		{
			name: "class list with spaced callee chain",
			in:   "el.classList\n\t.toggle('foo');",
			want: "el.classList\n\t.toggle('a');",
		},
		{
			name: "escaped string arguments decode before matching",
			in:   `document.getElementById('\x6Dain'); document.getElementById('main');`,
			want: `document.getElementById('a'); document.getElementById('a');`,
		},
		{
			name: "double backslashes collapse in selector strings",
			in:   `el.querySelector('.foo\\:bar');`,
			want: `el.querySelector('.a');`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "js", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestJSSetAttribute(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "class attribute value",
			in:   `el.setAttribute('class', 'foo bar');`,
			want: `el.setAttribute('class', 'a b');`,
		},
		{
			name: "id attribute value",
			in:   `el.setAttribute("id", "main");`,
			want: `el.setAttribute("id", "a");`,
		},
		{
			name: "href attribute value is an anchor",
			in:   `el.setAttribute('href', '/docs#install');`,
			want: `el.setAttribute('href', '/docs#a');`,
		},
		{
			name: "unlisted attribute is untouched",
			in:   `el.setAttribute('data-x', 'foo');`,
			want: `el.setAttribute('data-x', 'foo');`,
		},
		{
			name: "expression value is untouched",
			in:   `el.setAttribute('class', names.join(' '));`,
			want: `el.setAttribute('class', names.join(' '));`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "js", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestJSMarkupArguments(t *testing.T) {
	outputs := rewriteFiles(t, newTestConfig(t, nil),
		testFile{"css", ".item { }"},
		testFile{"js", `list.insertAdjacentHTML('beforeend', '<li class="item"></li>');`},
	)
	want := `list.insertAdjacentHTML('beforeend', '<li class="a"></li>');`
	if outputs[1] != want {
		t.Errorf("got  %q\nwant %q", outputs[1], want)
	}
}

func TestJSHistoryAndWindow(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "push state third argument",
			in:   `history.pushState(null, "", "/page#section");`,
			want: `history.pushState(null, "", "/page#a");`,
		},
		{
			name: "window open first argument",
			in:   `window.open("/help#faq");`,
			want: `window.open("/help#a");`,
		},
		{
			name: "location assign",
			in:   `window.location.assign("/docs#install");`,
			want: `window.location.assign("/docs#a");`,
		},
		{
			name: "absolute urls are untouched",
			in:   `window.open("https://example.com/#faq");`,
			want: `window.open("https://example.com/#faq");`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "js", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestJSProperties(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "class name and id assignment",
			in:   `el.className = "foo bar"; el.id = 'main';`,
			want: `el.className = "a b"; el.id = 'a';`,
		},
		{
			name: "class list value and comparisons",
			in:   `el.classList.value = "foo"; if (el.classList[0] === "foo") { }`,
			want: `el.classList.value = "a"; if (el.classList[0] === "a") { }`,
		},
		{
			name: "location fragment only",
			in:   `window.location = "/docs#install"; window.location.hash = "#install";`,
			want: `window.location = "/docs#a"; window.location.hash = "#a";`,
		},
		{
			name: "non literal values are untouched",
			in:   `el.className = current; a.id == b.id;`,
			want: `el.className = current; a.id == b.id;`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "js", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestJSInnerHTML(t *testing.T) {
	outputs := rewriteFiles(t, newTestConfig(t, nil),
		testFile{"css", ".card { }"},
		testFile{"js", `el.innerHTML = '<div class="card"></div>';`},
	)
	want := `el.innerHTML = '<div class="a"></div>';`
	if outputs[1] != want {
		t.Errorf("got  %q\nwant %q", outputs[1], want)
	}
}

func TestJSCommentsAndStringsShield(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "line comments",
			in:   "// el.classList.add('foo')\nel.classList.add('bar');",
			want: "// el.classList.add('foo')\nel.classList.add('a');",
		},
		{
			name: "block comments",
			in:   "/* el.getElementById('foo') */ el.getElementById('bar');",
			want: "/* el.getElementById('foo') */ el.getElementById('a');",
		},
		{
			name: "free standing strings",
			in:   `var doc = "call el.querySelector('.foo') here"; el.closest('.bar');`,
			want: `var doc = "call el.querySelector('.foo') here"; el.closest('.a');`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(t, "js", tt.in); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}
