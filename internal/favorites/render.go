package favorites

import (
	"bytes"
	"fmt"
)

// BatchSize is the number of items per rendered document.
const BatchSize = 5

// TextRenderer renders items as plain-text documents, BatchSize items
// each, one "Title - Category" line per item.
type TextRenderer struct {
	Header string // optional first line of every document
}

// Render splits items into documents.  No items yields no documents.
func (r TextRenderer) Render(items []Item) ([][]byte, error) {
	var docs [][]byte
	for start := 0; start < len(items); start += BatchSize {
		end := min(start+BatchSize, len(items))

		var buf bytes.Buffer
		if r.Header != "" {
			fmt.Fprintln(&buf, r.Header)
		}
		for _, it := range items[start:end] {
			fmt.Fprintf(&buf, "%s - %s\n", it.Title, it.Category)
		}
		docs = append(docs, buf.Bytes())
	}
	return docs, nil
}
