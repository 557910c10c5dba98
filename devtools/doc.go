package devtools

import (
	"fmt"
	"io"

	md "github.com/russross/blackfriday/v2"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/registry"
)

// RenderDoc renders a registered composition's Markdown Doc field (and,
// recursively, a note for each action/function leaf it reaches) to HTML.
func RenderDoc(src *registry.Source, out io.Writer) error {
	f := func(format string, args ...any) { fmt.Fprintf(out, format+"\n", args...) }

	f(`<div class="compositionDoc doc">%s</div>`, md.Run([]byte(src.Doc)))
	f(`<div class="compositionName"><code>%s</code></div>`, src.Name)
	f(`<div class="tree"><ul>`)
	renderNode(f, src.Composition)
	f(`</ul></div>`)
	return nil
}

func renderNode(f func(string, ...any), node *compose.Composition) {
	if node == nil {
		return
	}
	f(`<li><code>%s</code>`, node.Type)
	switch node.Type {
	case "action", "composition":
		f(`: <code>%s</code>`, node.Name())
	case "function":
		if spec := node.FunctionSpec(); spec != nil {
			f(`<div class="code"><pre>%s</pre></div>`, spec.Exec.Code)
		}
	}
	if len(node.Components) > 0 {
		f(`<ul>`)
		for _, c := range node.Components {
			renderNode(f, c)
		}
		f(`</ul>`)
	}
	f(`</li>`)
}
