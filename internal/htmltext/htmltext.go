// Package htmltext converts the HTML fragments stored with jobs into plain text.
package htmltext

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blocks whose boundaries become whitespace in plain text
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Blockquote: true, atom.Section: true,
}

var emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)

// ToPlain strips tags, decodes entities and collapses whitespace.
// Script and style contents are dropped.
func ToPlain(fragment string) string {
	if fragment == "" {
		return ""
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		// the tokenizer only fails on read errors; fall back to entity decoding
		return strings.Join(strings.Fields(html.UnescapeString(fragment)), " ")
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if blockElements[n.DataAtom] {
				b.WriteByte(' ')
				defer b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// EncodeEmails replaces every character of the e-mail addresses in s by a
// decimal character reference, hiding them from naive harvesters.
// Addresses inside tags are encoded too so mailto links keep working.
func EncodeEmails(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return emailPattern.ReplaceAllStringFunc(s, func(addr string) string {
		var b strings.Builder
		for _, r := range addr {
			fmt.Fprintf(&b, "&#%d;", r)
		}
		return b.String()
	})
}
