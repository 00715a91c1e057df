package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvExtractionMinTextLength   = "DOCGRID_EXTRACTION_MIN_TEXT_LENGTH"
	EnvExtractionMaxTextChars    = "DOCGRID_EXTRACTION_MAX_TEXT_CHARS"
	EnvExtractionOCRMaxPages     = "DOCGRID_EXTRACTION_OCR_MAX_PAGES"
	EnvExtractionOCRBinary       = "DOCGRID_EXTRACTION_OCR_BINARY"
	EnvExtractionOCRLanguage     = "DOCGRID_EXTRACTION_OCR_LANGUAGE"
	EnvExtractionCallTimeout     = "DOCGRID_EXTRACTION_CALL_TIMEOUT"
	EnvExtractionBulkConcurrency = "DOCGRID_EXTRACTION_BULK_CONCURRENCY"
	EnvExtractionBulkStagger     = "DOCGRID_EXTRACTION_BULK_STAGGER"
)

// ExtractionConfig holds pipeline tuning parameters: the text-extraction
// success threshold, the prompt character budget, OCR bounds, and the
// pacing of bulk processing runs.
type ExtractionConfig struct {
	MinTextLength   int    `toml:"min_text_length"`
	MaxTextChars    int    `toml:"max_text_chars"`
	OCRMaxPages     int    `toml:"ocr_max_pages"`
	OCRBinary       string `toml:"ocr_binary"`
	OCRLanguage     string `toml:"ocr_language"`
	CallTimeout     string `toml:"call_timeout"`
	BulkConcurrency int    `toml:"bulk_concurrency"`
	BulkStagger     string `toml:"bulk_stagger"`
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *ExtractionConfig) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
}

// BulkStaggerDuration returns BulkStagger as a time.Duration.
func (c *ExtractionConfig) BulkStaggerDuration() time.Duration {
	d, _ := time.ParseDuration(c.BulkStagger)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExtractionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ExtractionConfig) Merge(overlay *ExtractionConfig) {
	if overlay.MinTextLength != 0 {
		c.MinTextLength = overlay.MinTextLength
	}
	if overlay.MaxTextChars != 0 {
		c.MaxTextChars = overlay.MaxTextChars
	}
	if overlay.OCRMaxPages != 0 {
		c.OCRMaxPages = overlay.OCRMaxPages
	}
	if overlay.OCRBinary != "" {
		c.OCRBinary = overlay.OCRBinary
	}
	if overlay.OCRLanguage != "" {
		c.OCRLanguage = overlay.OCRLanguage
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.BulkConcurrency != 0 {
		c.BulkConcurrency = overlay.BulkConcurrency
	}
	if overlay.BulkStagger != "" {
		c.BulkStagger = overlay.BulkStagger
	}
}

func (c *ExtractionConfig) loadDefaults() {
	if c.MinTextLength == 0 {
		c.MinTextLength = 80
	}
	if c.MaxTextChars == 0 {
		c.MaxTextChars = 24000
	}
	if c.OCRMaxPages == 0 {
		c.OCRMaxPages = 3
	}
	if c.OCRBinary == "" {
		c.OCRBinary = "tesseract"
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "2m"
	}
	if c.BulkConcurrency == 0 {
		c.BulkConcurrency = 4
	}
	if c.BulkStagger == "" {
		c.BulkStagger = "250ms"
	}
}

func (c *ExtractionConfig) loadEnv() {
	setInt := func(envVar string, target *int) {
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*target = n
			}
		}
	}

	setInt(EnvExtractionMinTextLength, &c.MinTextLength)
	setInt(EnvExtractionMaxTextChars, &c.MaxTextChars)
	setInt(EnvExtractionOCRMaxPages, &c.OCRMaxPages)
	setInt(EnvExtractionBulkConcurrency, &c.BulkConcurrency)

	if v := os.Getenv(EnvExtractionOCRBinary); v != "" {
		c.OCRBinary = v
	}
	if v := os.Getenv(EnvExtractionOCRLanguage); v != "" {
		c.OCRLanguage = v
	}
	if v := os.Getenv(EnvExtractionCallTimeout); v != "" {
		c.CallTimeout = v
	}
	if v := os.Getenv(EnvExtractionBulkStagger); v != "" {
		c.BulkStagger = v
	}
}

func (c *ExtractionConfig) validate() error {
	if c.MinTextLength < 1 {
		return fmt.Errorf("min_text_length must be positive")
	}
	if c.MaxTextChars < c.MinTextLength {
		return fmt.Errorf("max_text_chars must be at least min_text_length")
	}
	if c.OCRMaxPages < 1 {
		return fmt.Errorf("ocr_max_pages must be positive")
	}
	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.BulkStagger); err != nil {
		return fmt.Errorf("invalid bulk_stagger: %w", err)
	}
	if c.BulkConcurrency < 1 {
		return fmt.Errorf("bulk_concurrency must be positive")
	}
	return nil
}
