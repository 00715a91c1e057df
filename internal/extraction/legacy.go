package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LegacyText returns the simple page-text walker strategy. It uses a plain
// text model independent of the structured extractor, which catches
// documents whose content streams the structured pass cannot decode.
func LegacyText() TextStrategy {
	return TextStrategy{
		Name:    "legacy",
		Extract: extractLegacy,
	}
}

func extractLegacy(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageNr := 1; pageNr <= r.NumPage(); pageNr++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		p := r.Page(pageNr)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole strategy.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
