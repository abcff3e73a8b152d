package soc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"
	"uclasoc/lib/retry"
	"uclasoc/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/soc")

// PageFetcher retrieves raw page text for a url. Implementations retry
// internally; a returned error means retries are exhausted and the caller
// should degrade to sentinel output rather than abort.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Pacer sleeps a random duration in [Min, Max] before each request. This is
// politeness toward the registrar's servers, not a correctness requirement.
// The zero Pacer never sleeps.
type Pacer struct {
	Min time.Duration
	Max time.Duration
}

func (p Pacer) Wait(ctx context.Context) {
	if p.Max <= 0 || p.Max < p.Min {
		return
	}
	ms, err := random.IntRange(int(p.Min.Milliseconds()), int(p.Max.Milliseconds())+1)
	if err != nil {
		ms = int(p.Min.Milliseconds())
	}

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type ClientOptions struct {
	// Timeout defaults to 15 seconds.
	Timeout time.Duration
	// Retry defaults to 3 attempts with linear 2s backoff.
	Retry retry.Policy
	Pacer Pacer
	// Cache is optional; when set, pages are served from and written to it.
	Cache *PageCache
}

// Client is the PageFetcher used against the live portal.
type Client struct {
	http  *resty.Client
	retry retry.Policy
	pacer Pacer
	cache *PageCache
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.Linear(2 * time.Second),
		}
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browserUserAgent)
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/soc/http")

	return &Client{
		http:  client,
		retry: opts.Retry,
		pacer: opts.Pacer,
		cache: opts.Cache,
	}, nil
}

func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("url", pageURL))

	if c.cache != nil {
		text, err := c.cache.Get(ctx, pageURL)
		if err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return text, nil
		}
		if err != errPageNotCached {
			slog.WarnContext(ctx, "page cache read failed", "url", pageURL, "err", err)
		}
	}

	text, err := retry.DoValue(ctx, c.retry, func() (string, error) {
		c.pacer.Wait(ctx)

		res, err := c.http.R().
			SetContext(ctx).
			Get(pageURL)
		if err != nil {
			return "", err
		}
		if res.IsError() {
			return "", fmt.Errorf("fetch %s: status %s", pageURL, res.Status())
		}
		return string(res.Body()), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return "", err
	}

	if c.cache != nil {
		err := c.cache.Set(ctx, pageURL, text)
		if err != nil {
			slog.WarnContext(ctx, "page cache write failed", "url", pageURL, "err", err)
		}
	}
	return text, nil
}
