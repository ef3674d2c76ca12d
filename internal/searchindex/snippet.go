package searchindex

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSnippetLimit is the visible character budget of a description snippet
const DefaultSnippetLimit = 130

const ellipsis = "..."

var trailingPartialWord = regexp.MustCompile(`(?:\W+|\W*\w+)\z`)

// TruncateDescription extracts the leading paragraph of a description and
// cuts it to at most limit visible characters at a word boundary. Text inside
// <code> is kept or dropped as a whole. Links are unwrapped. It returns ""
// when the description does not open with a paragraph.
func TruncateDescription(description string, limit int) string {
	if description == "" {
		return ""
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(description), context)
	if err != nil {
		return ""
	}

	para := leadingParagraph(nodes)
	if para == nil {
		return ""
	}

	content := visibleText(para)
	contentLen := utf8.RuneCountInString(content)

	switch {
	case contentLen > limit:
		// One extra character is always dropped and replaced with the ellipsis.
		cut := truncateRunes(content, limit+1-len(ellipsis))
		remaining := utf8.RuneCountInString(trailingPartialWord.ReplaceAllString(cut, ""))
		trimAfter(para, &remaining)
		para.AppendChild(&html.Node{Type: html.TextNode, Data: ellipsis})
	case strings.HasSuffix(content, ":"):
		// The paragraph introduces a following block.
		para.AppendChild(&html.Node{Type: html.TextNode, Data: ellipsis})
	}

	unwrapLinks(para)

	var sb strings.Builder
	for c := para.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

// PlainText strips the markup from a snippet for display outside a browser.
// Runs of whitespace collapse to one space.
func PlainText(snippet string) string {
	if snippet == "" {
		return ""
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(snippet), context)
	if err != nil {
		return snippet
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// leadingParagraph returns the first top-level element that is not a heading,
// provided it is a <p>.
func leadingParagraph(nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			continue
		case atom.P:
			return n
		default:
			return nil
		}
	}
	return nil
}

// visibleText concatenates the text of n, masking <code> text with
// underscores so the truncation regexp treats it as a single word.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				if c.Parent.DataAtom == atom.Code {
					sb.WriteString(strings.Repeat("_", utf8.RuneCountInString(c.Data)))
				} else {
					sb.WriteString(c.Data)
				}
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// trimAfter walks the children of n in post-order, spending *remaining on text
// nodes. The text node that overruns the budget is cut; everything after it,
// and every element left empty, is removed.
func trimAfter(n *html.Node, remaining *int) {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, c := range children {
		trimAfter(c, remaining)

		switch {
		case *remaining <= 0:
			if c.FirstChild == nil {
				n.RemoveChild(c)
			}
		case c.Type == html.TextNode:
			length := utf8.RuneCountInString(c.Data)
			*remaining -= length
			if *remaining < 0 {
				c.Data = truncateRunes(c.Data, length+*remaining)
			}
		}
	}
}

// unwrapLinks replaces every <a> below n with its children
func unwrapLinks(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		unwrapLinks(c)
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			for gc := c.FirstChild; gc != nil; {
				gnext := gc.NextSibling
				c.RemoveChild(gc)
				n.InsertBefore(gc, c)
				gc = gnext
			}
			n.RemoveChild(c)
		}
		c = next
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
