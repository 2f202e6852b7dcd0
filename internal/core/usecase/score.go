package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/risk-intel/internal/core/domain"
	"github.com/avoronov/risk-intel/internal/core/ports"
)

// RiskScoreUseCase blends a keyword rule scorer with a feature-weighted
// logistic scorer over the trailing document window. It holds no state:
// every run is a pure function of the window plus the policy.
type RiskScoreUseCase struct {
	companies ports.CompanyRepository
	docs      ports.DocumentRepository
	history   ports.RiskScoreRepository
	policy    domain.ScoringPolicy
	now       func() time.Time
}

func NewRiskScoreUseCase(
	companies ports.CompanyRepository,
	docs ports.DocumentRepository,
	history ports.RiskScoreRepository,
	policy domain.ScoringPolicy,
) *RiskScoreUseCase {
	return &RiskScoreUseCase{
		companies: companies,
		docs:      docs,
		history:   history,
		policy:    policy,
		now:       time.Now,
	}
}

func (uc *RiskScoreUseCase) Compute(ctx context.Context, companyID string) (*domain.RiskBreakdown, error) {
	if _, err := uc.companies.GetByID(ctx, companyID); err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}

	since := uc.now().UTC().AddDate(0, 0, -uc.policy.WindowDays)
	window, err := uc.docs.ListByCompany(ctx, companyID, &since)
	if err != nil {
		return nil, fmt.Errorf("list window documents: %w", err)
	}

	breakdown := scoreWindow(uc.policy, window)
	return &breakdown, nil
}

func (uc *RiskScoreUseCase) ComputeAndPersist(ctx context.Context, companyID string) (*domain.RiskScore, error) {
	breakdown, err := uc.Compute(ctx, companyID)
	if err != nil {
		return nil, err
	}

	record := &domain.RiskScore{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Score:     breakdown.Composite,
		RuleScore: breakdown.RuleScore,
		StatScore: breakdown.StatScore,
		Features:  breakdown.Features,
		CreatedAt: uc.now().UTC(),
	}
	// Append writes the history row and the company's current score in one
	// transaction; neither can land without the other.
	if err := uc.history.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("append risk score: %w", err)
	}
	return record, nil
}

func scoreWindow(policy domain.ScoringPolicy, window []domain.Document) domain.RiskBreakdown {
	rule := ruleScore(policy, window)
	features := extractRiskFeatures(window)
	stat := statisticalScore(policy, features)

	return domain.RiskBreakdown{
		Composite: rule*policy.RuleBlend + stat*policy.StatBlend,
		RuleScore: rule,
		StatScore: stat,
		Features:  features,
	}
}

// ruleScore sums fixed per-match weights across the window and normalizes by
// document count: the mean keyword contribution per document, clamped to
// [0,100]. An empty window scores zero.
func ruleScore(policy domain.ScoringPolicy, window []domain.Document) float64 {
	if len(window) == 0 {
		return 0.0
	}

	var total float64
	for i := range window {
		content := strings.ToLower(window[i].Title + " " + window[i].Content)
		if containsAny(content, policy.SevereKeywords) {
			total += policy.SevereWeight
		}
		if containsAny(content, policy.LegalKeywords) {
			total += policy.LegalWeight
		}
		if containsAny(content, policy.NegativeKeywords) {
			total += policy.NegativeWeight
		}
	}

	score := total / float64(len(window))
	return math.Min(score, 100.0)
}

func extractRiskFeatures(window []domain.Document) map[string]float64 {
	negatives := 0
	for i := range window {
		if window[i].SentimentLabel == domain.SentimentNegative {
			negatives++
		}
	}

	fraction := 0.0
	if len(window) > 0 {
		fraction = float64(negatives) / float64(len(window))
	}

	return map[string]float64{
		domain.FeatureNegativeFraction: fraction,
		domain.FeatureMentionCount:     float64(len(window)),
		domain.FeatureNegativeCount:    float64(negatives),
	}
}

// statisticalScore squashes the linear predictor through a scaled logistic
// into (0,100). An empty window lands on the midpoint 50, not 0.
func statisticalScore(policy domain.ScoringPolicy, features map[string]float64) float64 {
	predictor := features[domain.FeatureNegativeFraction]*policy.NegativeFractionWeight +
		features[domain.FeatureMentionCount]*policy.MentionCountWeight +
		features[domain.FeatureNegativeCount]*policy.NegativeCountWeight

	return 100.0 / (1.0 + math.Exp(-predictor/policy.LogisticScale))
}

func containsAny(content string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}
