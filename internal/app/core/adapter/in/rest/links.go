package rest

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
)

// Link hypermedia 連結
type Link struct {
	Rel  string `json:"rel"`
	Name string `json:"name"`
	Href string `json:"href"`
}

// Envelope 單一資源的回應：內容加上 self 連結
type Envelope struct {
	Result any    `json:"result"`
	Links  []Link `json:"links"`
}

// ListEnvelope 列表回應：每筆各自包一層 Envelope，外層帶 self/next/prev
type ListEnvelope struct {
	Result []Envelope `json:"result"`
	Links  []Link     `json:"links"`
}

func selfLink(href string) Link {
	return Link{Rel: "self", Name: "self", Href: href}
}

// requestURL 請求的絕對網址，不含 query string 與結尾斜線
func requestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: strings.TrimSuffix(r.URL.Path, "/")}
}

// child 在路徑後面加上一段
func child(u *url.URL, segments ...string) string {
	c := *u
	for _, s := range segments {
		c.Path += "/" + url.PathEscape(s)
	}
	c.RawQuery = ""
	return c.String()
}

// withIndex 保留原 query 參數，只替換 index
func withIndex(r *http.Request, index int) string {
	u := requestURL(r)
	q := r.URL.Query()
	q.Set("index", strconv.Itoa(index))
	u.RawQuery = q.Encode()
	return u.String()
}

// pagingLinks self 永遠存在，next/prev 只在游標存在時加入
func pagingLinks[T any](r *http.Request, page domain.Page[T]) []Link {
	self := requestURL(r)
	self.RawQuery = r.URL.RawQuery
	links := []Link{selfLink(self.String())}
	if page.Next != nil {
		links = append(links, Link{Rel: "next", Name: "next", Href: withIndex(r, *page.Next)})
	}
	if page.Prev != nil {
		links = append(links, Link{Rel: "prev", Name: "prev", Href: withIndex(r, *page.Prev)})
	}
	return links
}
