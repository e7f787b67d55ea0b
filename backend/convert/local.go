// Package convert provides core.Converter implementations.
package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/util"
	"github.com/hupe1980/toolmesh/tool"
)

// Options configure a Local converter.
type Options struct {
	// Delay simulates conversion latency. It is interrupted by the context.
	Delay time.Duration
}

type convertFunc func(data []byte) ([]byte, error)

// Local converts between the formats it can handle without external tools:
// txt and html, csv and json. Other pairs within one category are passed
// through unchanged under the new format. Pairs across categories fail with an
// unsupported conversion error.
type Local struct {
	opts  Options
	pairs map[[2]string]convertFunc
}

// NewLocal creates a Local converter.
func NewLocal(optFns ...func(o *Options)) *Local {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Local{
		opts: opts,
		pairs: map[[2]string]convertFunc{
			{"txt", "html"}: txtToHTML,
			{"html", "txt"}: htmlToTxt,
			{"csv", "json"}: csvToJSON,
			{"json", "csv"}: jsonToCSV,
		},
	}
}

// Supports reports whether the converter handles from -> to.
func (l *Local) Supports(from, to string) bool {
	if from == to {
		return true
	}
	if _, ok := l.pairs[[2]string{from, to}]; ok {
		return true
	}
	return sameCategory(from, to)
}

func sameCategory(from, to string) bool {
	c := tool.CategoryOf(from)
	return c != core.CategoryUnknown && c == tool.CategoryOf(to)
}

// Convert implements core.Converter.
func (l *Local) Convert(ctx context.Context, data []byte, from, to string) ([]byte, error) {
	if err := util.Sleep(ctx, l.opts.Delay); err != nil {
		return nil, err
	}
	if from == to {
		return bytes.Clone(data), nil
	}
	fn, ok := l.pairs[[2]string{from, to}]
	if !ok {
		if sameCategory(from, to) {
			return bytes.Clone(data), nil
		}
		return nil, core.UnsupportedConversionError(from, to)
	}
	out, err := fn(data)
	if err != nil {
		return nil, core.ConversionError(fmt.Errorf("%s to %s: %w", from, to, err))
	}
	return out, nil
}

func txtToHTML(data []byte) ([]byte, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	for _, para := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", strings.Join(lines, "<br>"))
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), nil
}

var (
	reDropped = regexp.MustCompile(`(?is)<(script|style|head)\b.*?</(script|style|head)>`)
	reBreak   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</h[1-6]>|</li>`)
	reTag     = regexp.MustCompile(`<[^>]*>`)
	reBlank   = regexp.MustCompile(`\n{3,}`)
)

func htmlToTxt(data []byte) ([]byte, error) {
	s := reDropped.ReplaceAllString(string(data), "")
	s = reBreak.ReplaceAllString(s, "\n")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = reBlank.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return []byte(strings.TrimSpace(s) + "\n"), nil
}

// csvToJSON maps each record to an object keyed by the header row, keeping
// column order.
func csvToJSON(data []byte) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []byte("[]\n"), nil
	}
	header := records[0]

	var b bytes.Buffer
	b.WriteString("[")
	for i, rec := range records[1:] {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  {")
		for j, key := range header {
			if j > 0 {
				b.WriteString(", ")
			}
			val := ""
			if j < len(rec) {
				val = rec[j]
			}
			k, _ := json.Marshal(key)
			v, _ := json.Marshal(val)
			b.Write(k)
			b.WriteString(": ")
			b.Write(v)
		}
		b.WriteString("}")
	}
	if len(records) > 1 {
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	return b.Bytes(), nil
}

// jsonToCSV flattens an array of objects. Columns follow first appearance
// order of the keys; nested values are written as raw JSON.
func jsonToCSV(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}
	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = gjson.Parse("[" + root.Raw + "]")
	}
	if !root.IsArray() {
		return nil, errors.New("expected an array of objects")
	}

	var (
		columns []string
		index   = map[string]int{}
		rows    []map[string]string
	)
	var rowErr error
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			rowErr = errors.New("expected an array of objects")
			return false
		}
		row := map[string]string{}
		item.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if _, seen := index[key]; !seen {
				index[key] = len(columns)
				columns = append(columns, key)
			}
			if v.Type == gjson.JSON {
				row[key] = v.Raw
			} else {
				row[key] = v.String()
			}
			return true
		})
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := make([]string, len(columns))
		for i, c := range columns {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return b.Bytes(), w.Error()
}
