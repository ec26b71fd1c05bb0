package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	gutils "github.com/Laisky/go-utils/v6"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gosimple/slug"
)

var (
	titleRegexp     = regexp.MustCompile(`<(h[23])[^>]{0,}>([^<]+)</\w+>`)
	titleMenuRegexp = regexp.MustCompile(`<(h[23]) *id="([^"]*)">([^<]+)</\w+>`) // extract menu
)

// MarkdownToHTML renders markdown, raw html in the source is dropped.
//
// h2 and h3 headings get anchor ids, and when numbered is set they are
// prefixed like "Ⅰ、" and "1、".
func MarkdownToHTML(md []byte, numbered bool) string {
	htmlFlags := mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML | mdhtml.Safelink
	opts := mdhtml.RendererOptions{Flags: htmlFlags}
	renderer := mdhtml.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	cnt := string(markdown.ToHTML(md, p, renderer))
	cnt = titleRegexp.ReplaceAllString(cnt, `<$1 id="$2">$2</$1>`)

	var (
		tl, tlev, tid, ttext string
		l2cnt, l3cnt         int
		seen                 = map[string]int{}
	)
	for _, ts := range titleMenuRegexp.FindAllStringSubmatch(cnt, -1) {
		tl = ts[0]
		tlev = strings.ToLower(ts[1])
		tid = ts[2]
		ttext = ts[3]
		switch tlev {
		case "h2":
			l3cnt = 0
			l2cnt++
			if numbered {
				ttext = gutils.Number2Roman(l2cnt) + "、" + ttext
			}
		case "h3":
			l3cnt++
			if numbered {
				ttext = strconv.FormatInt(int64(l3cnt), 10) + "、" + ttext
			}
		}

		tid = convertTitleID(tid)
		// repeated titles get a numeric suffix so anchors stay unique
		if n := seen[tid]; n > 0 {
			seen[tid]++
			tid += "-" + strconv.Itoa(n)
		} else {
			seen[tid] = 1
		}
		cnt = strings.Replace(cnt, tl, `<`+tlev+` id="`+tid+`">`+ttext+`</`+tlev+`>`, 1)
	}

	return cnt
}

// convertTitleID convert title to valid html id
func convertTitleID(title string) string {
	s := slug.Make(html.UnescapeString(title))
	if s == "" {
		s = "section"
	}

	return "header-" + s
}

// ExtractMenu builds a nested navigation of the h2 and h3 headings that carry ids
func ExtractMenu(html string) string {
	var (
		menu                 = `<nav id="post-menu" class="h-100 flex-column align-items-stretch"><nav class="nav nav-pills flex-column">`
		level, escapedTl, tl string
		l2cnt, l3cnt         string
	)
	for _, ts := range titleMenuRegexp.FindAllStringSubmatch(html, -1) {
		level = strings.ToLower(ts[1])
		escapedTl = ts[2]
		tl = ts[3]
		if level == "h2" {
			menu += l2cnt
			if l3cnt != "" {
				menu += l3cnt + `</nav>`
			}
			l3cnt = ""
			l2cnt = `<a class="nav-link" href="#` + escapedTl + `">` + tl + `</a>`
		} else if level == "h3" {
			if l3cnt == "" {
				l3cnt = `<nav class="nav nav-pills flex-column"><a class="nav-link ms-3 my-1" href="#` + escapedTl + `">` + tl + `</a>`
			} else {
				l3cnt += `<a class="nav-link ms-3 my-1" href="#` + escapedTl + `">` + tl + `</a>`
			}
		}
	}

	menu += l2cnt
	if l3cnt != "" {
		menu += l3cnt + `</nav>`
	}
	menu += `</nav></nav>`
	return menu
}
