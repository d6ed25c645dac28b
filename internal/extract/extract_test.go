package extract

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/covercheck/internal/cache"
	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/logging"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/worker"
)

// fakeProvider answers every Extract call with a fixed reply or error
type fakeProvider struct {
	reply string
	err   error
	delay time.Duration
	last  llm.ExtractRequest
	calls int32
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.err == nil }

func (f *fakeProvider) Extract(ctx context.Context, req llm.ExtractRequest) (*llm.ExtractResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	f.last = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ExtractResponse{Content: f.reply, Model: "fake-1", TokensUsed: 42}, nil
}

const document = `Marine Hull Insurance. Policy number HM-2025-10-A4B covers the vessel named MV Neptune
from November 1st, 2025 to October 31st, 2026 for a total insured value of $5,000,000 USD.`

func TestLLMExtractor_Extract(t *testing.T) {
	provider := &fakeProvider{reply: `{"policy_number":"HM-2025-10-A4B","vessel_name":"MV Neptune","policy_start_date":"2025-11-01","policy_end_date":"2026-10-31","insured_value":5000000}`}
	ex := NewLLMExtractor(provider, LLMOptions{Model: "m", MaxTokens: 256, Logger: logging.Discard()})

	got, err := ex.Extract(context.Background(), document)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := &model.ExtractedData{
		PolicyNumber:    model.StringPtr("HM-2025-10-A4B"),
		VesselName:      model.StringPtr("MV Neptune"),
		PolicyStartDate: model.DatePtr(model.NewDate(2025, 11, 1)),
		PolicyEndDate:   model.DatePtr(model.NewDate(2026, 10, 31)),
		InsuredValue:    model.Int64Ptr(5000000),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extracted data mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(provider.last.Prompt, "HM-2025-10-A4B") {
		t.Error("expected document text in the prompt")
	}
	if !strings.Contains(provider.last.System, "return null") && !strings.Contains(provider.last.System, "Return null") {
		t.Error("expected null instructions in the system prompt")
	}
	if provider.last.Schema.Name != FieldSchema.Name || len(provider.last.Schema.Fields) != 5 {
		t.Errorf("expected field schema in request, got %+v", provider.last.Schema)
	}
	if provider.last.Model != "m" || provider.last.MaxTokens != 256 {
		t.Errorf("expected options forwarded, got model=%s max_tokens=%d", provider.last.Model, provider.last.MaxTokens)
	}
}

func TestLLMExtractor_AllNull(t *testing.T) {
	provider := &fakeProvider{reply: `{"policy_number":null,"vessel_name":null,"policy_start_date":null,"policy_end_date":null,"insured_value":null}`}
	ex := NewLLMExtractor(provider, LLMOptions{Logger: logging.Discard()})

	got, err := ex.Extract(context.Background(), "nothing useful here")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty schema, got %+v", got)
	}
}

func TestLLMExtractor_ProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	ex := NewLLMExtractor(&fakeProvider{err: cause}, LLMOptions{Logger: logging.Discard()})

	_, err := ex.Extract(context.Background(), document)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to stay in the chain, got %v", err)
	}
}

func TestLLMExtractor_BadReply(t *testing.T) {
	ex := NewLLMExtractor(&fakeProvider{reply: "Sorry, I can't help with that."}, LLMOptions{Logger: logging.Discard()})

	if _, err := ex.Extract(context.Background(), document); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLLMExtractor_Timeout(t *testing.T) {
	provider := &fakeProvider{reply: `{}`, delay: time.Second}
	ex := NewLLMExtractor(provider, LLMOptions{Timeout: 20 * time.Millisecond, Logger: logging.Discard()})

	start := time.Now()
	_, err := ex.Extract(context.Background(), document)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline in the chain, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout was not applied")
	}
}

func TestStaticExtractor(t *testing.T) {
	data := model.ExtractedData{PolicyNumber: model.StringPtr("A")}
	ex := NewStaticExtractor(data)

	got, err := ex.Extract(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	*got.PolicyNumber = "mutated"

	again, _ := ex.Extract(context.Background(), "anything")
	if *again.PolicyNumber != "A" {
		t.Error("expected each call to return an independent copy")
	}
	if ex.Calls() != 2 {
		t.Errorf("expected 2 calls, got %d", ex.Calls())
	}

	failing := NewFailingExtractor(errors.New("boom"))
	if _, err := failing.Extract(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCachingExtractor(t *testing.T) {
	inner := NewStaticExtractor(model.ExtractedData{VesselName: model.StringPtr("Sea Serpent")})
	ex := NewCachingExtractor(inner, cache.NewMemoryCache(time.Minute, time.Minute), "openai", "gpt-4o-mini", 0, logging.Discard())

	for i := 0; i < 3; i++ {
		got, err := ex.Extract(context.Background(), document)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if got.VesselName == nil || *got.VesselName != "Sea Serpent" {
			t.Fatalf("unexpected data: %+v", got)
		}
	}
	if inner.Calls() != 1 {
		t.Errorf("expected one upstream call, got %d", inner.Calls())
	}

	if _, err := ex.Extract(context.Background(), document+" amended"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if inner.Calls() != 2 {
		t.Errorf("expected a different document to miss the cache, got %d calls", inner.Calls())
	}
}

func TestCachingExtractor_ScopedToProviderAndModel(t *testing.T) {
	inner := NewStaticExtractor(model.ExtractedData{VesselName: model.StringPtr("Sea Serpent")})
	c := cache.NewMemoryCache(time.Minute, time.Minute)

	scopes := []struct{ provider, model string }{
		{"openai", "gpt-4o-mini"},
		{"openai", "gpt-4o-mini"},
		{"openai", "gpt-4o"},
		{"gemini", "gpt-4o"},
	}
	for _, s := range scopes {
		ex := NewCachingExtractor(inner, c, s.provider, s.model, 0, logging.Discard())
		if _, err := ex.Extract(context.Background(), document); err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
	}

	if inner.Calls() != 3 {
		t.Errorf("expected one upstream call per provider/model pair, got %d", inner.Calls())
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 cache entries, got %d", c.Len())
	}
}

func TestCachingExtractor_FailuresNotCached(t *testing.T) {
	inner := NewFailingExtractor(errors.New("down"))
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	ex := NewCachingExtractor(inner, c, "openai", "gpt-4o-mini", 0, logging.Discard())

	for i := 0; i < 2; i++ {
		if _, err := ex.Extract(context.Background(), document); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	}
	if inner.Calls() != 2 {
		t.Errorf("expected failures to be retried upstream, got %d calls", inner.Calls())
	}
	if c.Len() != 0 {
		t.Errorf("expected nothing cached, got %d entries", c.Len())
	}
}

func TestCachingExtractor_CorruptEntry(t *testing.T) {
	inner := NewStaticExtractor(model.ExtractedData{PolicyNumber: model.StringPtr("A")})
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set(cache.Key("openai", "gpt-4o-mini", document), []byte(`{"policy_start_date": 5}`), 0)

	ex := NewCachingExtractor(inner, c, "openai", "gpt-4o-mini", 0, logging.Discard())
	got, err := ex.Extract(context.Background(), document)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.PolicyNumber == nil || *got.PolicyNumber != "A" {
		t.Errorf("expected fresh extraction, got %+v", got)
	}
	if inner.Calls() != 1 {
		t.Errorf("expected corrupt entry to fall through, got %d calls", inner.Calls())
	}
}

func TestLimitedExtractor(t *testing.T) {
	inner := NewStaticExtractor(model.ExtractedData{})
	limiter := worker.NewLimiter(0.01, 1)
	ex := NewLimitedExtractor(inner, limiter, "fake")

	if _, err := ex.Extract(context.Background(), document); err != nil {
		t.Fatalf("first call should pass the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ex.Extract(ctx, document)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable while throttled, got %v", err)
	}
	if inner.Calls() != 1 {
		t.Errorf("expected throttled call not to reach upstream, got %d calls", inner.Calls())
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extraction.Provider = "openai"
	cfg.Extraction.APIKey = ""

	if _, err := NewFromConfig(cfg, logging.Discard()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without a key, got %v", err)
	}

	cfg.Extraction.APIKey = "test-key"
	ex, err := NewFromConfig(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	caching, ok := ex.(*CachingExtractor)
	if !ok {
		t.Fatalf("expected caching extractor on top, got %T", ex)
	}
	if _, ok := caching.next.(*LimitedExtractor); !ok {
		t.Errorf("expected rate limiter under the cache, got %T", caching.next)
	}

	cfg.Cache.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 0
	ex, err = NewFromConfig(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if _, ok := ex.(*LLMExtractor); !ok {
		t.Errorf("expected bare LLM extractor, got %T", ex)
	}

	cfg.Extraction.Provider = "static"
	ex, err = NewFromConfig(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if _, ok := ex.(*StaticExtractor); !ok {
		t.Errorf("expected static extractor, got %T", ex)
	}

	cfg.Extraction.Provider = "watson"
	if _, err := NewFromConfig(cfg, logging.Discard()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured for unknown provider, got %v", err)
	}
}
