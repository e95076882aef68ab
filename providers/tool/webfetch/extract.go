package webfetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Format selects how the main region of a page is rendered.
type Format int

const (
	// FormatText keeps the text of block elements joined by single spaces.
	FormatText Format = iota
	// FormatMarkdown renders the main region as Markdown.
	FormatMarkdown
)

const (
	// DefaultTitle is used when a page has no <title>.
	DefaultTitle = "Untitled"
	// DefaultMinTextLength is the rune count a block must exceed to be kept.
	DefaultMinTextLength = 20
)

// ContentSelectors are tried in order; the first match is the main region.
var ContentSelectors = []string{
	"article",
	`[role="main"]`,
	".content",
	".main-content",
	".post-content",
	".entry-content",
	"#content",
	".article-body",
}

// StripSelector matches page chrome and non-content elements.
const StripSelector = "script, style, noscript, nav, header, footer, aside, iframe, form, .ad, .ads, .advertisement"

const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, div"

// ExtractOptions tunes Extract. The zero value means plain text with the
// default minimum block length.
type ExtractOptions struct {
	Format        Format
	MinTextLength int
}

// Extraction is the result of Extract.
type Extraction struct {
	Metadata Metadata
	Content  string
}

// Extract reads metadata and the main readable text of doc. doc itself is not
// modified.
func Extract(doc *goquery.Document, opts ExtractOptions) (Extraction, error) {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}

	result := Extraction{Metadata: extractMetadata(doc)}

	clone := goquery.CloneDocument(doc)
	region := mainRegion(clone)
	region.Find(StripSelector).Remove()

	switch opts.Format {
	case FormatMarkdown:
		fragment, err := goquery.OuterHtml(region)
		if err != nil {
			return result, fmt.Errorf("render main region: %w", err)
		}
		markdown, err := htmltomarkdown.ConvertString(fragment)
		if err != nil {
			return result, fmt.Errorf("convert to markdown: %w", err)
		}
		result.Content = strings.TrimSpace(markdown)
	default:
		result.Content = blockText(region, opts.MinTextLength)
	}
	return result, nil
}

func mainRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range ContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func blockText(region *goquery.Selection, minLength int) string {
	var parts []string
	region.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(ownText(s))
		if utf8.RuneCountInString(text) > minLength {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

// ownText returns the text of s excluding nested block elements, which are
// visited on their own. Without this a wrapping <div> would repeat the text
// of every paragraph inside it.
func ownText(s *goquery.Selection) string {
	if s.Find(blockSelector).Length() == 0 {
		return s.Text()
	}

	var sb strings.Builder
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		node := child.Get(0)
		switch {
		case node.Type == html.TextNode:
			sb.WriteString(node.Data)
		case node.Type == html.ElementNode && !child.Is(blockSelector) && child.Find(blockSelector).Length() == 0:
			sb.WriteString(child.Text())
		}
		sb.WriteByte(' ')
	})
	return sb.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractMetadata(doc *goquery.Document) Metadata {
	meta := Metadata{
		Title:         normalizeSpace(doc.Find("title").First().Text()),
		Description:   metaContent(doc, `meta[name="description"]`),
		Keywords:      metaContent(doc, `meta[name="keywords"]`),
		OGTitle:       metaContent(doc, `meta[property="og:title"]`),
		OGDescription: metaContent(doc, `meta[property="og:description"]`),
	}
	if meta.Title == "" {
		meta.Title = DefaultTitle
	}
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
