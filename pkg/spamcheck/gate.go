package spamcheck

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	httpclient "github.com/civic-lens/civic-backend/pkg/http-client"
	"github.com/civic-lens/civic-backend/pkg/metrics"
)

const defaultTimeout = 3 * time.Second

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	MTLS    *apihelpers.CertificatePaths
}

// Gate asks the external classifier whether a text is spam. It fails open: any problem
// with the classifier yields "not spam".
type Gate struct {
	clientConfig httpclient.ClientConfig
	client       *http.Client
	cache        VerdictCache
	timeout      time.Duration
}

// NewGate creates a gate. An empty URL disables classification. cache may be nil.
func NewGate(cfg Config, cache VerdictCache) (*Gate, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientConfig := httpclient.ClientConfig{
		RootURL:              cfg.URL,
		APIKey:               cfg.APIKey,
		MTLSCertificatePaths: cfg.MTLS,
		Timeout:              timeout,
	}

	g := &Gate{
		clientConfig: clientConfig,
		cache:        cache,
		timeout:      timeout,
	}
	if cfg.URL == "" {
		slog.Warn("spam classifier URL not configured, spam gate disabled")
		return g, nil
	}

	client, err := clientConfig.NewHTTPClient()
	if err != nil {
		return nil, err
	}
	g.client = client
	return g, nil
}

func (g *Gate) IsSpam(ctx context.Context, text string) bool {
	if g.client == nil {
		metrics.RecordSpamCheck(metrics.SPAM_RESULT_DISABLED)
		return false
	}

	if g.cache != nil {
		verdict, found, err := g.cache.Get(ctx, text)
		if err != nil {
			slog.Warn("spam verdict cache lookup failed", slog.String("error", err.Error()))
		} else if found {
			metrics.RecordSpamCheck(metrics.SPAM_RESULT_CACHED)
			return verdict
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var raw json.RawMessage
	err := g.clientConfig.RunHTTPcall(callCtx, g.client, "", spamRequest{Message: text}, &raw)
	if err != nil {
		slog.Warn("spam classifier unavailable, accepting content", slog.String("error", err.Error()))
		metrics.RecordSpamCheck(metrics.SPAM_RESULT_ERROR)
		return false
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		slog.Warn("spam classifier answer not understood, accepting content", slog.String("error", err.Error()))
		metrics.RecordSpamCheck(metrics.SPAM_RESULT_ERROR)
		return false
	}

	if verdict {
		metrics.RecordSpamCheck(metrics.SPAM_RESULT_SPAM)
	} else {
		metrics.RecordSpamCheck(metrics.SPAM_RESULT_HAM)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, text, verdict); err != nil {
			slog.Warn("spam verdict cache store failed", slog.String("error", err.Error()))
		}
	}
	return verdict
}

type spamRequest struct {
	Message string `json:"message"`
}

// parseVerdict accepts a bare boolean or an object with a boolean "spam" field.
func parseVerdict(raw json.RawMessage) (bool, error) {
	var verdict bool
	if err := json.Unmarshal(raw, &verdict); err == nil {
		return verdict, nil
	}

	var obj struct {
		Spam *bool `json:"spam"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false, err
	}
	if obj.Spam == nil {
		return false, errors.New("classifier answer has no spam field")
	}
	return *obj.Spam, nil
}
