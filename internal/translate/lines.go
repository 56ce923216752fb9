package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/tapsync/internal/line"
)

// TranslateLines replaces each line's Text with its translation. RawText
// keeps the original and all marks are untouched.
func TranslateLines(
	ctx context.Context,
	tr Translator,
	lines []line.Line,
) ([]line.Line, error) {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if l.Text == "" {
			continue
		}
		items = append(items, Item{ID: l.ID, Text: l.Text})
	}

	results, err := tr.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(results))
	for _, r := range results {
		byID[r.ID] = r.Text
	}

	out := line.Clone(lines)
	for i := range out {
		if out[i].Text == "" {
			continue
		}
		text, ok := byID[out[i].ID]
		if !ok {
			return nil, fmt.Errorf("no translation for %s", out[i].ID)
		}
		out[i].Text = text
	}
	return out, nil
}

// Bilingual stacks the original text above the translation for export.
func Bilingual(lines []line.Line) []line.Line {
	out := line.Clone(lines)
	for i := range out {
		if out[i].RawText != "" && out[i].RawText != out[i].Text {
			out[i].Text = out[i].RawText + "\n" + out[i].Text
		}
	}
	return out
}
