package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

// Runner executes external commands. It exists so tests can stub the OCR
// binary.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// OCRText returns the optical-character-recognition strategy. Pages are
// rendered to PNG via ImageMagick and fed through the OCR binary, bounded to
// the first maxPages pages for cost control.
func OCRText(runner Runner, binary, language string, maxPages int) TextStrategy {
	return TextStrategy{
		Name: "ocr",
		Extract: func(ctx context.Context, path string) (string, error) {
			return extractOCR(ctx, runner, binary, language, maxPages, path)
		},
	}
}

func extractOCR(
	ctx context.Context,
	runner Runner,
	binary, language string,
	maxPages int,
	path string,
) (string, error) {
	tempDir, err := os.MkdirTemp("", "docgrid-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	imagePaths, err := renderPages(ctx, path, tempDir, maxPages)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNr, imgPath := range imagePaths {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		out, stderr, err := runner.Run(ctx, binary, imgPath, "stdout", "-l", language)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w: %s", pageNr+1, err, strings.TrimSpace(string(stderr)))
		}

		text := strings.TrimSpace(string(out))
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

func renderPages(ctx context.Context, path, tempDir string, maxPages int) ([]string, error) {
	pdfDoc, err := document.OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	if maxPages > 0 && len(allPages) > maxPages {
		allPages = allPages[:maxPages]
	}

	paths := make([]string, 0, len(allPages))
	for i, page := range allPages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := page.ToImage(renderer, nil)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		imgPath := filepath.Join(tempDir, fmt.Sprintf("page-%d.png", i+1))
		if err := os.WriteFile(imgPath, data, 0600); err != nil {
			return nil, fmt.Errorf("write page %d image: %w", i+1, err)
		}

		paths = append(paths, imgPath)
	}

	return paths, nil
}
