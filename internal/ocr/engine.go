// Package ocr defines the contract with the external recognition engine. The
// engine is a black-box asynchronous job service: a submission yields a job id,
// the terminal outcome arrives later on the notification channel, and the full
// result set is fetched by job id.
package ocr

import "context"

// BlockType classifies one element of the engine's structured layout output.
type BlockType string

const (
	BlockPage BlockType = "PAGE"
	BlockLine BlockType = "LINE"
	BlockWord BlockType = "WORD"

	BlockLayoutText          BlockType = "LAYOUT_TEXT"
	BlockLayoutTitle         BlockType = "LAYOUT_TITLE"
	BlockLayoutSectionHeader BlockType = "LAYOUT_SECTION_HEADER"
	BlockLayoutHeader        BlockType = "LAYOUT_HEADER"
	BlockLayoutFooter        BlockType = "LAYOUT_FOOTER"
	BlockLayoutPageNumber    BlockType = "LAYOUT_PAGE_NUMBER"
	BlockLayoutFigure        BlockType = "LAYOUT_FIGURE"
	BlockLayoutList          BlockType = "LAYOUT_LIST"
	BlockLayoutTable         BlockType = "LAYOUT_TABLE"
	BlockLayoutKeyValue      BlockType = "LAYOUT_KEY_VALUE"
)

// Block is one recognized element, positioned by page.
type Block struct {
	ID         string    `json:"id"`
	BlockType  BlockType `json:"blockType"`
	Text       string    `json:"text,omitempty"`
	Page       int       `json:"page"`
	Confidence float64   `json:"confidence,omitempty"`
}

// Result is the engine's complete structured output for one job, assembled
// from every page of the paginated fetch.
type Result struct {
	JobID     string  `json:"jobId"`
	JobStatus string  `json:"jobStatus"`
	Pages     int     `json:"pages"`
	Blocks    []Block `json:"blocks"`
}

// Source locates the document to analyze inside the object store. JobTag is
// echoed back in the engine's completion notification so the consumer can
// recover the document id.
type Source struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	JobTag string `json:"-"`
}

// Engine is the recognition engine client. StartAnalysis returns as soon as
// the engine accepts the job; completion is signalled out of band. Neither
// call enforces its own timeout; the caller's context is the only bound.
type Engine interface {
	// StartAnalysis submits the document for layout analysis and returns the
	// engine's job id.
	StartAnalysis(ctx context.Context, src Source) (string, error)
	// Result fetches the full structured result set for a finished job,
	// following pagination until exhausted.
	Result(ctx context.Context, jobID string) (*Result, error)
}
