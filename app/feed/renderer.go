package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// Renderer writes a channel as RSS 2.0.
type Renderer struct {
	version string
	now     func() time.Time
}

func NewRenderer(version string) *Renderer {
	return &Renderer{version: version, now: time.Now}
}

// Run renders channel. selfLink, when set, is written as the atom:link
// self reference.
func (r *Renderer) Run(channel *Channel, selfLink string) (string, error) {
	if channel == nil {
		return "", fmt.Errorf("channel is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	r.writeElement(&buf, "title", channel.Title, 4)
	r.writeElement(&buf, "link", channel.URL, 4)
	r.writeElement(&buf, "description", fmt.Sprintf("Generated from %s", channel.URL), 4)

	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	r.writeElement(&buf, "language", channel.Language, 4)
	r.writeElement(&buf, "lastBuildDate", r.now().In(time.Local).Format(time.RFC1123Z), 4)
	r.writeElement(&buf, "generator", fmt.Sprintf("HTML-Comb/%s", r.version), 4)

	for _, item := range channel.Items {
		r.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (r *Renderer) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	r.writeElement(buf, "title", item.Title, 6)
	r.writeElement(buf, "link", item.URL, 6)
	r.writeElement(buf, "description", item.Description, 6)
	r.writeElement(buf, "pubDate", item.PubDate, 6)

	if item.GUID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", r.isURL(item.GUID)))
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	// Length and type are written as extracted, even when empty.
	if item.Enclosure != nil && item.Enclosure.URL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%s\" type=\"%s\" />\n",
			html.EscapeString(item.Enclosure.URL),
			html.EscapeString(item.Enclosure.Length),
			html.EscapeString(item.Enclosure.Type)))
	}

	buf.WriteString("    </item>\n")
}

func (r *Renderer) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (r *Renderer) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
