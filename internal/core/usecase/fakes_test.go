package usecase

import (
	"context"
	"time"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

type companyRepoFake struct {
	company *domain.Company
	getErr  error

	created   []*domain.Company
	createErr error
	listErr   error

	summaryID   string
	summaryText string
	summaryErr  error
}

func (f *companyRepoFake) Create(_ context.Context, company *domain.Company) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, company)
	return nil
}

func (f *companyRepoFake) GetByID(context.Context, string) (*domain.Company, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyCompany := *f.company
	return &copyCompany, nil
}

func (f *companyRepoFake) List(context.Context) ([]domain.Company, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.company == nil {
		return nil, nil
	}
	return []domain.Company{*f.company}, nil
}

func (f *companyRepoFake) UpdateSummary(_ context.Context, id, summary string, _ time.Time) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaryID = id
	f.summaryText = summary
	return nil
}

type docRepoFake struct {
	docs []domain.Document

	getErr    error
	listErr   error
	recentErr error

	annotations    map[string]domain.TextFeatures
	annotationErrs map[string]error
	embeddingRefs  map[string]string

	dayCalls []time.Time
}

func newDocRepoFake(docs ...domain.Document) *docRepoFake {
	return &docRepoFake{
		docs:           docs,
		annotations:    map[string]domain.TextFeatures{},
		annotationErrs: map[string]error{},
		embeddingRefs:  map[string]string{},
	}
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			copyDoc := f.docs[i]
			return &copyDoc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (f *docRepoFake) ListByCompany(_ context.Context, companyID string, _ *time.Time) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byCompany(companyID), nil
}

func (f *docRepoFake) ListByCompanyOnDay(_ context.Context, companyID string, day time.Time) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.dayCalls = append(f.dayCalls, day)

	var out []domain.Document
	for _, doc := range f.byCompany(companyID) {
		at := doc.IngestedAt
		if doc.PublishedAt != nil {
			at = *doc.PublishedAt
		}
		at = at.UTC()
		if at.Year() == day.Year() && at.YearDay() == day.YearDay() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *docRepoFake) ListUnannotated(_ context.Context, companyID string) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Document
	for _, doc := range f.byCompany(companyID) {
		if !doc.Annotated() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *docRepoFake) ListRecent(_ context.Context, companyID string, limit int) ([]domain.Document, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	out := f.byCompany(companyID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *docRepoFake) SaveAnnotations(_ context.Context, id string, features domain.TextFeatures) error {
	if err := f.annotationErrs[id]; err != nil {
		return err
	}
	f.annotations[id] = features
	return nil
}

func (f *docRepoFake) SaveEmbeddingRef(_ context.Context, id, embeddingID string) error {
	f.embeddingRefs[id] = embeddingID
	return nil
}

func (f *docRepoFake) byCompany(companyID string) []domain.Document {
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.CompanyID == companyID {
			out = append(out, doc)
		}
	}
	return out
}

type historyRepoFake struct {
	appended  []*domain.RiskScore
	appendErr error
}

func (f *historyRepoFake) Append(_ context.Context, score *domain.RiskScore) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, score)
	return nil
}

func (f *historyRepoFake) ListByCompany(context.Context, string, int) ([]domain.RiskScore, error) {
	var out []domain.RiskScore
	for _, score := range f.appended {
		out = append(out, *score)
	}
	return out, nil
}

type sentimentRepoFake struct {
	upserts   []*domain.SentimentPoint
	deletes   []time.Time
	upsertErr error
}

func (f *sentimentRepoFake) UpsertPoint(_ context.Context, point *domain.SentimentPoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, point)
	return nil
}

func (f *sentimentRepoFake) DeletePoint(_ context.Context, _ string, day time.Time) error {
	f.deletes = append(f.deletes, day)
	return nil
}

func (f *sentimentRepoFake) ListRange(context.Context, string, time.Time, time.Time) ([]domain.SentimentPoint, error) {
	return nil, nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishDocumentProcess(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentProcess(context.Context, func(context.Context, string) error) error {
	return nil
}

type recognizerFake struct {
	entities map[string][]string
	err      error
}

func (f *recognizerFake) Recognize(context.Context, string) (map[string][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

type classifierFake struct {
	label      string
	confidence float64
	err        error

	inputs []string
}

func (f *classifierFake) Classify(_ context.Context, text string) (string, float64, error) {
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return "", 0, f.err
	}
	return f.label, f.confidence, nil
}

type embedderFake struct {
	vectors  map[string][]float32
	queryErr error

	calls []string
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if vector, ok := f.vectors[text]; ok {
		return vector, nil
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return nil, nil
}

type generatorFake struct {
	output string
	err    error

	prompts []string
}

func (f *generatorFake) GenerateFromPrompt(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

type mapCacheFake struct {
	entries map[string][]float32
}

func newMapCacheFake() *mapCacheFake {
	return &mapCacheFake{entries: map[string][]float32{}}
}

func (f *mapCacheFake) Get(key string) ([]float32, bool) {
	vector, ok := f.entries[key]
	return vector, ok
}

func (f *mapCacheFake) Add(key string, vector []float32) {
	f.entries[key] = vector
}
