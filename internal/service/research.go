package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/repository"
	"github.com/akoutras/medpress/internal/search"
)

// Cache is the subset of the in-memory cache the services need.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// research angles queried per topic, in parallel
var researchAngles = []string{
	"κλινικές μελέτες αποτελεσματικότητα",
	"διαδικασία στάδια θεραπείας",
	"ποσοστά επιτυχίας στατιστικά",
	"ανάρρωση και πιθανές επιπλοκές",
}

type ResearchService interface {
	Research(ctx context.Context, topic string) (*domain.ResearchContext, error)
}

type ResearchConfig struct {
	MaxResultsPerAngle int
	MaxFindings        int
	MaxFacts           int
	CacheTTL           time.Duration
	SearchTimeout      time.Duration

	// Domains narrows searches to trusted sources; empty searches the
	// whole web. A leading dash excludes a host.
	Domains []string
}

type ResearchDeps struct {
	Search  search.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  ResearchConfig

	// optional components
	Knowledge repository.KnowledgeRepository
	Cache     Cache
}

type researchService struct {
	search    search.Client
	knowledge repository.KnowledgeRepository
	cache     Cache
	logger    *zap.Logger
	metrics   *metrics.Metrics
	config    ResearchConfig
}

func NewResearchService(deps ResearchDeps) ResearchService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.MaxResultsPerAngle == 0 {
		deps.Config.MaxResultsPerAngle = 5
	}
	if deps.Config.MaxFindings == 0 {
		deps.Config.MaxFindings = 12
	}
	if deps.Config.MaxFacts == 0 {
		deps.Config.MaxFacts = 10
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = time.Hour
	}
	if deps.Config.SearchTimeout == 0 {
		deps.Config.SearchTimeout = 30 * time.Second
	}

	return &researchService{
		search:    deps.Search,
		knowledge: deps.Knowledge,
		cache:     deps.Cache,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		config:    deps.Config,
	}
}

func (s *researchService) Research(ctx context.Context, topic string) (*domain.ResearchContext, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ErrEmptyTopic
	}

	rc := &domain.ResearchContext{
		Topic:      topic,
		GatheredAt: time.Now(),
	}

	// stored facts first, they are already curated
	if s.knowledge != nil {
		facts, err := s.knowledge.GetFactsByTopic(ctx, topic, s.config.MaxFacts)
		if err != nil {
			s.logger.Warn("knowledge lookup failed", zap.String("topic", topic), zap.Error(err))
		} else {
			rc.Facts = facts
		}
	}

	findings, err := s.searchAngles(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("research topic: %w", err)
	}
	rc.Findings = findings

	s.logger.Info("research gathered",
		zap.String("topic", topic),
		zap.Int("findings", len(rc.Findings)),
		zap.Int("facts", len(rc.Facts)),
	)

	// persist sourced findings as facts in the background
	if s.knowledge != nil && len(findings) > 0 {
		go s.storeFindings(topic, findings)
	}

	return rc, nil
}

func (s *researchService) searchAngles(ctx context.Context, topic string) ([]domain.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()

	resultsChan := make(chan []domain.Finding, len(researchAngles))
	g, ctx := errgroup.WithContext(ctx)

	for _, angle := range researchAngles {
		angle := angle
		g.Go(func() error {
			findings, err := s.searchSingleAngle(ctx, topic, angle)
			if err != nil {
				s.logger.Warn("research angle failed",
					zap.String("angle", angle),
					zap.Error(err),
				)
				return nil
			}
			resultsChan <- findings
			return nil
		})
	}

	g.Wait()
	close(resultsChan)

	seen := make(map[string]bool)
	var all []domain.Finding

	for findings := range resultsChan {
		for _, f := range findings {
			key := f.URL
			if key == "" {
				key = f.Content
			}
			if !seen[key] {
				seen[key] = true
				all = append(all, f)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	if len(all) > s.config.MaxFindings {
		all = all[:s.config.MaxFindings]
	}

	return all, nil
}

func (s *researchService) searchSingleAngle(ctx context.Context, topic, angle string) ([]domain.Finding, error) {
	query := topic + " " + angle
	cacheKey := s.cacheKey(query)

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if findings, ok := cached.([]domain.Finding); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return findings, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	searchStart := time.Now()
	resp, err := s.search.Search(ctx, search.Request{
		Query:      query,
		MaxResults: s.config.MaxResultsPerAngle,
		Domains:    s.config.Domains,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearchRequest("error", time.Since(searchStart))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSearchRequest("success", time.Since(searchStart))
	}

	findings := make([]domain.Finding, len(resp.Results))
	for i, r := range resp.Results {
		findings[i] = domain.Finding{
			Title:     r.Title,
			URL:       r.URL,
			Content:   r.Snippet,
			Score:     r.Score,
			Angle:     angle,
			Published: r.Published,
		}
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, findings, s.config.CacheTTL)
	}

	return findings, nil
}

func (s *researchService) cacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("research:%x", hash[:8])
}

// storeFindings saves sourced findings so later runs on the topic skip
// the search round-trip. Duplicates are expected and ignored.
func (s *researchService) storeFindings(topic string, findings []domain.Finding) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, f := range findings {
		if f.URL == "" || f.Content == "" {
			continue
		}

		fact := &domain.Fact{
			ID:          uuid.NewString(),
			Topic:       topic,
			Content:     f.Content,
			SourceURL:   f.URL,
			Evidence:    domain.EvidenceModerate,
			ExtractedAt: time.Now(),
		}
		if err := fact.Validate(); err != nil {
			continue
		}

		if err := s.knowledge.CreateFact(ctx, fact); err != nil {
			s.logger.Debug("store finding skipped",
				zap.String("url", f.URL),
				zap.Error(err),
			)
		}
	}
}
