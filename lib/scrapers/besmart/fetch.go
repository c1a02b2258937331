package besmart

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var noCacheHeaders = map[string]string{
	"Cache-Control": "no-cache, no-store, must-revalidate",
	"Pragma":        "no-cache",
	"Expires":       "0",
}

// FetchOrders retrieves the order listing. Every request carries a
// cache-busting timestamp parameter and no-cache headers. When activeOnly
// is set and a filtered listing url is configured, a second request
// mirrors the panel's "Active orders" toggle; any failure there falls
// back to the unfiltered page. There are no retries here, the poll loop's
// own cadence provides them.
func (c *Client) FetchOrders(ctx context.Context, activeOnly bool) (RawPage, error) {
	ctx, span := tracer.Start(ctx, "client:FetchOrders")
	defer span.End()

	page, err := c.fetchListing(ctx, c.tasksUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return RawPage{}, err
	}

	if !activeOnly || c.activeTasksUrl == "" {
		return page, nil
	}

	filtered, err := c.fetchListing(ctx, c.activeTasksUrl)
	if err != nil {
		// best-effort: the unfiltered page is still usable
		slog.DebugContext(ctx, "active-orders filter unavailable, using unfiltered page", "err", err)
		return page, nil
	}
	return filtered, nil
}

func (c *Client) fetchListing(ctx context.Context, listingUrl string) (RawPage, error) {
	now := c.clock.Now()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeaders(noCacheHeaders).
		SetQueryParam("_t", strconv.FormatInt(now.Unix(), 10)).
		Get(listingUrl)
	if err != nil {
		return RawPage{}, &FetchError{Url: listingUrl, Err: err}
	}

	c.noteFetch(res)

	if res.IsError() {
		return RawPage{}, &FetchError{Url: listingUrl, StatusCode: res.StatusCode()}
	}

	return RawPage{
		Body:      res.Body(),
		Url:       listingUrl,
		FinalUrl:  finalUrl(res),
		FetchedAt: now,
	}, nil
}

// noteFetch records where the request actually landed, which feeds the
// session expiry heuristic (a fetch redirected to the login surface means
// the session is gone).
func (c *Client) noteFetch(res *resty.Response) {
	c.mu.Lock()
	c.lastFinalUrl = finalUrl(res)
	c.mu.Unlock()
}
