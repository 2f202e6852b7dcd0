package usecase

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

// maxSentimentInputChars bounds classifier input so inference cost stays
// fixed regardless of document size.
const maxSentimentInputChars = 512

// Signed-score thresholds for the tri-state relabeling. These can disagree
// with the binary classifier's own label near the boundary; downstream
// consumers rely on the signed score and tri-state label, not the raw output.
const (
	positiveThreshold = 0.5
	negativeThreshold = -0.5
)

// FeatureExtractor derives entities and sentiment from raw text. It never
// fails: any backend error degrades to neutral defaults so one bad document
// cannot stall the pipeline.
type FeatureExtractor struct {
	recognizer ports.EntityRecognizer
	classifier ports.SentimentClassifier
	log        *slog.Logger
}

func NewFeatureExtractor(
	recognizer ports.EntityRecognizer,
	classifier ports.SentimentClassifier,
	log *slog.Logger,
) *FeatureExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &FeatureExtractor{
		recognizer: recognizer,
		classifier: classifier,
		log:        log,
	}
}

func (e *FeatureExtractor) Extract(ctx context.Context, text string) domain.TextFeatures {
	features := domain.NeutralFeatures()
	features.Entities = e.extractEntities(ctx, text)

	score, label, ok := e.computeSentiment(ctx, text)
	if ok {
		features.SentimentScore = score
		features.SentimentLabel = label
	}
	return features
}

func (e *FeatureExtractor) extractEntities(ctx context.Context, text string) map[string][]string {
	if e.recognizer == nil {
		return map[string][]string{}
	}

	raw, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		e.log.Warn("entity_extraction_degraded", "error", err)
		return map[string][]string{}
	}

	entities := make(map[string][]string, len(raw))
	for category, mentions := range raw {
		seen := make(map[string]struct{}, len(mentions))
		deduped := make([]string, 0, len(mentions))
		for _, mention := range mentions {
			if _, ok := seen[mention]; ok {
				continue
			}
			seen[mention] = struct{}{}
			deduped = append(deduped, mention)
		}
		entities[category] = deduped
	}
	return entities
}

func (e *FeatureExtractor) computeSentiment(ctx context.Context, text string) (float64, domain.SentimentLabel, bool) {
	if e.classifier == nil {
		return 0, "", false
	}

	label, confidence, err := e.classifier.Classify(ctx, truncateRunes(text, maxSentimentInputChars))
	if err != nil {
		e.log.Warn("sentiment_degraded", "error", err)
		return 0, "", false
	}

	score := confidence
	if label == string(domain.SentimentNegative) {
		score = -confidence
	}
	return score, relabel(score), true
}

func relabel(score float64) domain.SentimentLabel {
	switch {
	case score > positiveThreshold:
		return domain.SentimentPositive
	case score < negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
