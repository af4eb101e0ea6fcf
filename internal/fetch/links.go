package fetch

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/frontierkit/crawlsched/internal/request"
)

// ExtractLinks parses the page body and returns absolute http(s) anchor
// targets as fresh requests one level deeper than their parent.
// Unparseable bodies yield no links rather than an error; link loss is
// acceptable where a failed crawl is not.
func ExtractLinks(resp *request.Response) []*request.Request {
	base, err := url.Parse(resp.Request.URL)
	if err != nil {
		return nil
	}
	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil
	}

	var links []*request.Request
	seen := make(map[string]struct{})
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				target, err := base.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					continue
				}
				if target.Scheme != "http" && target.Scheme != "https" {
					continue
				}
				target.Fragment = ""
				u := target.String()
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
				link := request.New(u)
				link.Depth = resp.Request.Depth + 1
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}
