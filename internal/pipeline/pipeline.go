package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pipeline orchestrates one translation request: OCR, script gate,
// fragment geometry, optional per-fragment translation, full-text
// translation, and response assembly. Each gate failure terminates the
// request with its matching error; nothing is retried.
type Pipeline struct {
	detector  TextDetector
	fragments FragmentTranslator
	document  DocumentTranslator
}

// New creates a pipeline from its three external collaborators.
func New(detector TextDetector, fragments FragmentTranslator, document DocumentTranslator) *Pipeline {
	return &Pipeline{
		detector:  detector,
		fragments: fragments,
		document:  document,
	}
}

// Run processes a single request. The returned error is one of the
// sentinel gate errors, an *ExternalError, or a context error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	report := func(stage Stage) {
		if req.Progress != nil {
			req.Progress(stage)
		}
	}

	report(StageOCR)
	start := time.Now()
	detections, err := p.detector.DetectText(ctx, req.Image)
	stageDuration.WithLabelValues(string(StageOCR)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, NewExternalError(ServiceOCR, err)
	}
	if len(detections) == 0 {
		return nil, ErrNoTextDetected
	}

	// The first detection carries the full-image transcription; its
	// geometry is ignored.
	fullText := detections[0].Text

	report(StageScriptCheck)
	if !ContainsJapanese(fullText) {
		return nil, ErrNoJapaneseText
	}

	report(StageFragments)
	fragments := buildFragments(detections[1:])

	if req.RubyMode {
		report(StageFragmentTranslate)
		p.translateFragments(ctx, fragments)
	}

	report(StageFullTextTranslate)
	start = time.Now()
	english, err := p.document.TranslateDocument(ctx, fullText)
	stageDuration.WithLabelValues(string(StageFullTextTranslate)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, NewExternalError(ServiceCompletion, err)
	}
	if english == "" {
		// The completion service answered but produced no content. The
		// request still succeeds with an empty translation.
		slog.Warn("full-text translation returned empty content")
	}

	report(StageAssemble)
	result := &Result{
		JapaneseText: fullText,
		EnglishText:  english,
		TextBoxes:    fragments,
	}

	payload := encodeImagePayload(req.MIMEType, req.Image)
	if req.RubyMode {
		result.RubyImageBase64 = payload
	} else {
		result.ProcessedImageBase64 = payload
	}

	return result, nil
}

// translateFragments fans out one translation call per fragment and joins
// before returning. Results are written back by index, so completion order
// does not matter. A failed fragment keeps its own source text as the
// translation and is marked, without aborting the batch.
func (p *Pipeline) translateFragments(ctx context.Context, fragments []Fragment) {
	start := time.Now()

	var wg sync.WaitGroup
	for i := range fragments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			translated, err := p.fragments.TranslateFragment(ctx, fragments[i].Text)
			if err != nil {
				slog.Warn("fragment translation failed, falling back to source text",
					"index", i, "error", err)
				fragments[i].TranslatedText = fragments[i].Text
				fragments[i].TranslationFailed = true
				fragmentTranslationsTotal.WithLabelValues("fallback").Inc()
				return
			}

			fragments[i].TranslatedText = translated
			fragmentTranslationsTotal.WithLabelValues("translated").Inc()
		}(i)
	}
	wg.Wait()

	stageDuration.WithLabelValues(string(StageFragmentTranslate)).Observe(time.Since(start).Seconds())
}
