package besmart

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
	"besmart-monitor/lib/chrono"
	"besmart-monitor/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/besmart")

var ErrAuthFailed = fmt.Errorf("all login strategies were rejected by the admin panel")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseUrl  string
	Username string
	Password string
	// TasksUrl defaults to <BaseUrl>/tasks.
	TasksUrl string
	// ActiveTasksUrl is the listing url with the server-side "Active
	// orders" status filter already applied. Optional.
	ActiveTasksUrl string
	// Timeout bounds every request. Defaults to 30s.
	Timeout time.Duration
	// RefreshInterval is how long a session is trusted before Expired
	// reports true. Defaults to 10m.
	RefreshInterval time.Duration
	Clock           chrono.Clock
}

// Client owns the authenticated session against the admin panel.
type Client struct {
	baseUrl         *url.URL
	tasksUrl        string
	activeTasksUrl  string
	username        string
	password        string
	refreshInterval time.Duration
	clock           chrono.Clock

	Http *resty.Client

	mu           sync.Mutex
	loginAt      time.Time
	lastFinalUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = time.Minute * 10
	}
	if opts.TasksUrl == "" {
		opts.TasksUrl = strings.TrimRight(opts.BaseUrl, "/") + "/tasks"
	}
	if opts.Clock == nil {
		opts.Clock = chrono.StandardClock{}
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/besmart/http")

	return &Client{
		baseUrl:         baseUrl,
		tasksUrl:        opts.TasksUrl,
		activeTasksUrl:  opts.ActiveTasksUrl,
		username:        opts.Username,
		password:        opts.Password,
		refreshInterval: opts.RefreshInterval,
		clock:           opts.Clock,
		Http:            client,
	}, nil
}

// loginCandidate is one endpoint + field-name combination the panel might
// accept. Candidates are tried in order until a session sticks.
type loginCandidate struct {
	path string
	form func(username, password, csrf string) map[string]string
}

var loginCandidates = []loginCandidate{
	{
		path: "/",
		form: func(username, password, csrf string) map[string]string {
			data := map[string]string{
				"uid":      username,
				"password": password,
			}
			if csrf != "" {
				data["csrf_token"] = csrf
			}
			return data
		},
	},
	{path: "/login", form: altLoginForm},
	{path: "/auth", form: altLoginForm},
	{path: "/signin", form: altLoginForm},
}

func altLoginForm(username, password, csrf string) map[string]string {
	data := map[string]string{
		"username": username,
		"password": password,
		"email":    username,
		"user":     username,
	}
	if csrf != "" {
		data["csrf_token"] = csrf
	}
	return data
}

// csrf token hiding places observed across panel releases
var csrfSelectors = []string{
	"input[name=csrf_token]",
	"input[name=_token]",
	"input[name=csrf]",
	"meta[name=csrf-token]",
	"input[type=hidden][name*=csrf]",
}

func scrapeCsrfToken(doc *goquery.Document) string {
	for _, selector := range csrfSelectors {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if v, ok := el.Attr("value"); ok && v != "" {
			return v
		}
		if v, ok := el.Attr("content"); ok && v != "" {
			return v
		}
	}
	return ""
}

// Login walks the candidate list until one yields an authenticated
// session. It fails with ErrAuthFailed only once every candidate has been
// rejected.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.baseUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return fmt.Errorf("fetch login page: %w", err)
	}

	csrf := ""
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err == nil {
		csrf = scrapeCsrfToken(doc)
	}

	for _, candidate := range loginCandidates {
		res, err := c.Http.R().
			SetContext(ctx).
			SetFormData(candidate.form(c.username, c.password, csrf)).
			Post(strings.TrimRight(c.baseUrl.String(), "/") + candidate.path)
		if err != nil {
			continue
		}

		if c.sessionEstablished(res) {
			c.mu.Lock()
			c.loginAt = c.clock.Now()
			// the login POST itself lands on the login surface, it must
			// not trip the expiry heuristic
			c.lastFinalUrl = ""
			c.mu.Unlock()
			return nil
		}
	}

	span.SetStatus(codes.Error, ErrAuthFailed.Error())
	return ErrAuthFailed
}

// sessionEstablished applies the success heuristics in order: redirect
// target, page content markers, then a session cookie.
func (c *Client) sessionEstablished(res *resty.Response) bool {
	if res.IsError() {
		return false
	}

	if strings.Contains(strings.ToLower(finalUrl(res)), "admin") {
		return true
	}

	body := strings.ToLower(string(res.Body()))
	if strings.Contains(body, "dashboard") || strings.Contains(body, "admin") {
		return true
	}

	for _, cookie := range c.Http.GetClient().Jar.Cookies(c.baseUrl) {
		if strings.Contains(strings.ToLower(cookie.Name), "session") {
			return true
		}
	}

	return false
}

// Refresh re-runs authentication on the same cookie jar. The poll loop
// calls this on its timer rather than eagerly.
func (c *Client) Refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Refresh")
	defer span.End()

	return c.Login(ctx)
}

// Expired is a heuristic: the refresh interval has elapsed, or the last
// fetch was bounced back to the login surface.
func (c *Client) Expired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loginAt.IsZero() {
		return true
	}
	if now.Sub(c.loginAt) > c.refreshInterval {
		return true
	}
	if c.lastFinalUrl != "" && c.onLoginSurface(c.lastFinalUrl) {
		return true
	}
	return false
}

func (c *Client) onLoginSurface(rawUrl string) bool {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return false
	}
	path := strings.TrimRight(u.Path, "/")
	base := strings.TrimRight(c.baseUrl.Path, "/")
	return path == base || path == base+"/login"
}

// Close discards the session.
func (c *Client) Close() {
	jar, err := cookiejar.New(nil)
	if err == nil {
		c.Http.SetCookieJar(jar)
	}
	c.mu.Lock()
	c.loginAt = time.Time{}
	c.lastFinalUrl = ""
	c.mu.Unlock()
}

func finalUrl(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		return res.RawResponse.Request.URL.String()
	}
	return res.Request.URL
}
