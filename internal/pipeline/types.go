package pipeline

import "context"

// Vertex is one corner of a detected text polygon, in pixel coordinates
// with a top-left origin. Coordinates missing from the OCR response
// default to zero.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Detection is a single detection from the text-detection service. The
// first detection of a response carries the full-image transcription; the
// remaining ones are individual fragments.
type Detection struct {
	Text     string
	Vertices []Vertex
}

// Fragment is one OCR-detected text run with its bounding geometry.
// TranslatedText is populated in ruby mode only. TranslationFailed marks
// fragments whose translation fell back to the source text.
type Fragment struct {
	Text              string   `json:"text"`
	Bounds            []Vertex `json:"bounds"`
	Left              int      `json:"left"`
	Top               int      `json:"top"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	TranslatedText    string   `json:"translatedText,omitempty"`
	TranslationFailed bool     `json:"translationFailed,omitempty"`
}

// Request holds one upload to process.
type Request struct {
	Image    []byte
	MIMEType string
	RubyMode bool

	// Progress, when set, receives a notification as each stage starts.
	Progress ProgressFunc
}

// Result is the assembled response payload. Exactly one of
// ProcessedImageBase64 / RubyImageBase64 is populated, selected by mode.
type Result struct {
	JapaneseText         string     `json:"japaneseText"`
	EnglishText          string     `json:"englishText"`
	ProcessedImageBase64 string     `json:"processedImageBase64,omitempty"`
	RubyImageBase64      string     `json:"rubyImageBase64,omitempty"`
	TextBoxes            []Fragment `json:"textBoxes"`
}

// Stage identifies a pipeline stage for progress reporting and metrics.
type Stage string

const (
	StageOCR               Stage = "ocr"
	StageScriptCheck       Stage = "script_check"
	StageFragments         Stage = "fragments"
	StageFragmentTranslate Stage = "fragment_translate"
	StageFullTextTranslate Stage = "fulltext_translate"
	StageAssemble          Stage = "assemble"
)

// ProgressFunc receives stage notifications while a request is processed.
type ProgressFunc func(stage Stage)

// TextDetector performs text detection on raw image bytes.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]Detection, error)
}

// FragmentTranslator translates a single text fragment.
type FragmentTranslator interface {
	TranslateFragment(ctx context.Context, text string) (string, error)
}

// DocumentTranslator produces one cohesive translation of a whole text.
type DocumentTranslator interface {
	TranslateDocument(ctx context.Context, text string) (string, error)
}
