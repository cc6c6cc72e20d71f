// Package extract derives plain text from the recognition engine's structured
// layout output. Page furniture (headers, footers, page numbers) and figure
// captions are excluded by default; each exclusion category is configurable.
package extract

import (
	"sort"
	"strings"

	"ocrapi/internal/config"
	"ocrapi/internal/ocr"
)

// Options select which layout categories are dropped from the derived text.
type Options struct {
	ExcludePageHeaders bool
	ExcludePageFooters bool
	ExcludePageNumbers bool
	ExcludeFigureText  bool
}

// DefaultOptions excludes every furniture category.
func DefaultOptions() Options {
	return Options{
		ExcludePageHeaders: true,
		ExcludePageFooters: true,
		ExcludePageNumbers: true,
		ExcludeFigureText:  true,
	}
}

// FromPipeline maps pipeline configuration onto extraction options.
func FromPipeline(cfg config.PipelineConfig) Options {
	return Options{
		ExcludePageHeaders: cfg.ExcludePageHeaders,
		ExcludePageFooters: cfg.ExcludePageFooters,
		ExcludePageNumbers: cfg.ExcludePageNumbers,
		ExcludeFigureText:  cfg.ExcludeFigureText,
	}
}

// textBearing reports whether a layout block contributes text to the document
// body at all.
func textBearing(t ocr.BlockType) bool {
	switch t {
	case ocr.BlockLayoutText, ocr.BlockLayoutTitle, ocr.BlockLayoutSectionHeader,
		ocr.BlockLayoutList, ocr.BlockLayoutTable, ocr.BlockLayoutKeyValue,
		ocr.BlockLayoutHeader, ocr.BlockLayoutFooter, ocr.BlockLayoutPageNumber,
		ocr.BlockLayoutFigure:
		return true
	}
	return false
}

func (o Options) excluded(t ocr.BlockType) bool {
	switch t {
	case ocr.BlockLayoutHeader:
		return o.ExcludePageHeaders
	case ocr.BlockLayoutFooter:
		return o.ExcludePageFooters
	case ocr.BlockLayoutPageNumber:
		return o.ExcludePageNumbers
	case ocr.BlockLayoutFigure:
		return o.ExcludeFigureText
	}
	return false
}

// Text concatenates the page-level text of a result, in page order, applying
// the configured exclusions. Blocks within a page are separated by a newline,
// pages by a blank line. Results with no layout blocks fall back to raw LINE
// blocks (documents analyzed without layout features).
func Text(res *ocr.Result, opt Options) string {
	if res == nil || len(res.Blocks) == 0 {
		return ""
	}

	pages := map[int][]string{}
	sawLayout := false
	for _, b := range res.Blocks {
		if !textBearing(b.BlockType) {
			continue
		}
		sawLayout = true
		if opt.excluded(b.BlockType) || b.Text == "" {
			continue
		}
		pages[b.Page] = append(pages[b.Page], b.Text)
	}

	if !sawLayout {
		for _, b := range res.Blocks {
			if b.BlockType == ocr.BlockLine && b.Text != "" {
				pages[b.Page] = append(pages[b.Page], b.Text)
			}
		}
	}

	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		parts = append(parts, strings.Join(pages[n], "\n"))
	}
	return strings.Join(parts, "\n\n")
}
