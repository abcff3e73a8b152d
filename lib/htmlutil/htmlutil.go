package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text of every text node under node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// TextFragments returns the trimmed text of each direct child text node of
// the first node in sel, skipping fragments that are pure whitespace. Text
// inside nested tags is not included.
func TextFragments(sel *goquery.Selection) []string {
	if len(sel.Nodes) == 0 {
		return nil
	}
	var fragments []string
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.TextNode {
			continue
		}
		text := strings.TrimSpace(child.Data)
		if text == "" {
			continue
		}
		fragments = append(fragments, text)
	}
	return fragments
}

// FirstTextFragment returns the first non-whitespace direct child text node
// of sel, or "" if there is none.
func FirstTextFragment(sel *goquery.Selection) string {
	fragments := TextFragments(sel)
	if len(fragments) == 0 {
		return ""
	}
	return fragments[0]
}

// JoinedText collects every text node under the first node of sel, trims
// each one and joins the non-empty pieces with sep.
func JoinedText(sel *goquery.Selection, sep string) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var pieces []string
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				pieces = append(pieces, text)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(sel.Nodes[0])
	return strings.Join(pieces, sep)
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// FirstAnchor returns the first <a> inside sel as an Anchor with cleaned up
// link text, or false if sel contains no anchor with an href.
func FirstAnchor(sel *goquery.Selection) (Anchor, bool) {
	a := sel.Find("a").First()
	if len(a.Nodes) == 0 {
		return Anchor{}, false
	}
	href, ok := a.Attr("href")
	if !ok {
		return Anchor{}, false
	}

	name := GetText(a.Nodes[0])
	name = removeNonPrintable(name)
	name = strings.Trim(name, " \t\n")
	name = innerWhitespace.ReplaceAllString(name, " ")

	return Anchor{Name: name, Href: href}, true
}
