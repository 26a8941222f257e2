package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/muhammadchandra19/exchange/pkg/broadcast"
	"github.com/muhammadchandra19/exchange/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"

	"github.com/muhammadchandra19/exchange/services/market-feed/internal/usecase/subscription"
)

const checkTimeout = 2 * time.Second

// FeedStats is the body of GET /stats.
type FeedStats struct {
	Ingestion subscription.Stats      `json:"ingestion"`
	Bus       broadcast.Stats         `json:"bus"`
	Postgres  *postgresql.HealthCheck `json:"postgres,omitempty"`
}

// registerHTTP registers the health and stats server on the app port.
func (b *Bootstrap) registerHTTP() {
	hc := healthcheck.HealthCheck{
		Dependencies: map[string]healthcheck.Pinger{
			"postgres": b.Postgres.Ping,
			"redis":    b.Redis.Ping,
		},
		Timeout: checkTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", b.serveStats)

	b.HTTP = &http.Server{
		Addr:              fmt.Sprintf(":%d", b.Config.App.Port),
		Handler:           hc.Handler(mux),
		ReadHeaderTimeout: checkTimeout,
	}
}

// Stats returns the ingestion and bus counters together with the registry
// store health.
func (b *Bootstrap) Stats(ctx context.Context) FeedStats {
	stats := FeedStats{Bus: b.Bus.Stats()}
	if b.Subscription != nil {
		stats.Ingestion = b.Subscription.Stats()
	}
	if b.Postgres != nil {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		stats.Postgres = b.Postgres.CheckHealth(ctx)
	}
	return stats
}

func (b *Bootstrap) serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(b.Stats(r.Context()))
}
