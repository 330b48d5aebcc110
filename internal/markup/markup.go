// Package markup превращает тела постов в HTML и текстовые анонсы.
package markup

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const ellipsis = "…"

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// ToHTML рендерит Markdown и очищает результат от опасной разметки.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return ugc.Sanitize(buf.String()), nil
}

// Markdown — вариант ToHTML для шаблонов: при ошибке рендера показывает экранированный исходник.
func Markdown(src string) template.HTML {
	out, err := ToHTML(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(out)
}

// PlainText рендерит Markdown и удаляет все теги, оставляя только текст.
func PlainText(src string) string {
	out, err := ToHTML(src)
	if err != nil {
		out = src
	}
	return html.UnescapeString(strict.Sanitize(out))
}

// TruncateWords оставляет первые n слов s. Если слова отброшены, добавляется "…".
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if n < 0 {
		n = 0
	}
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " " + ellipsis
}

// Summary — текстовый анонс Markdown-тела из n слов.
func Summary(src string, n int) string {
	return TruncateWords(PlainText(src), n)
}
