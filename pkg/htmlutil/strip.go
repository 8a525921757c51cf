package htmlutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var multipleSpacesPattern = regexp.MustCompile(`[ \t\f\r]{2,}`)

// blockTags end a visual line when they open or close.
var blockTags = map[atom.Atom]bool{
	atom.P:   true,
	atom.Div: true,
	atom.Br:  true,
	atom.Li:  true,
	atom.H1:  true,
	atom.H2:  true,
	atom.H3:  true,
	atom.H4:  true,
	atom.H5:  true,
	atom.H6:  true,
}

// skippedTags have their text content dropped entirely.
var skippedTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// StripTags converts an HTML fragment into plain text. Block-level elements
// become line breaks, entities are decoded, and whitespace within each line is
// collapsed. Empty lines are removed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	skipDepth := 0
	z := html.NewTokenizer(strings.NewReader(s))

loop:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep the text collected so far.
			break loop
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedTags[a] && tt == html.StartTagToken {
				skipDepth++
			}
			if a == atom.Br {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedTags[a] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[a] {
				sb.WriteByte('\n')
			}
		}
	}

	result := strings.ReplaceAll(sb.String(), "\u00a0", " ")

	var nonEmptyLines []string
	for _, line := range strings.Split(result, "\n") {
		line = strings.TrimSpace(multipleSpacesPattern.ReplaceAllString(line, " "))
		if line != "" {
			nonEmptyLines = append(nonEmptyLines, line)
		}
	}

	return strings.Join(nonEmptyLines, "\n")
}
