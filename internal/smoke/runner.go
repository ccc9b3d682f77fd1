package smoke

import (
	"context"
	"net/http"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Env is what a check gets to work with.
type Env struct {
	Client      *apiclient.Client
	Session     *session.Session
	Auth        service.AuthService
	HTTP        *http.Client
	Email       string
	Password    string
	FrontendURL string
}

type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

func (r Result) Passed() bool { return r.Err == nil }

type Report struct {
	Results  []Result
	Duration time.Duration
}

func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

func (r *Report) Passed() bool { return r.Failed() == 0 }

type Runner struct {
	cfg         *config.Config
	log         *zap.Logger
	httpClient  *http.Client
	apiURL      string
	frontendURL string
	checks      []Check
	parallel    int
}

type Option func(*Runner)

func WithHTTPClient(hc *http.Client) Option {
	return func(r *Runner) { r.httpClient = hc }
}

// WithAPIURL overrides api.base_url.
func WithAPIURL(u string) Option {
	return func(r *Runner) { r.apiURL = u }
}

// WithFrontendURL overrides smoke.frontend_url. Empty skips page checks.
func WithFrontendURL(u string) Option {
	return func(r *Runner) { r.frontendURL = u }
}

func WithChecks(checks ...Check) Option {
	return func(r *Runner) { r.checks = checks }
}

// WithParallel bounds concurrent checks. Zero or less means unbounded.
func WithParallel(n int) Option {
	return func(r *Runner) { r.parallel = n }
}

func NewRunner(cfg *config.Config, log *zap.Logger, opts ...Option) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		cfg:         cfg,
		log:         log,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.API.TimeoutSec) * time.Second},
		apiURL:      cfg.API.BaseURL,
		frontendURL: cfg.Smoke.FrontendURL,
		checks:      DefaultChecks(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.httpClient = instrumented(r.httpClient)
	return r
}

// instrumented returns hc with its transport traced by otelhttp, copying hc when needed.
func instrumented(hc *http.Client) *http.Client {
	if _, ok := hc.Transport.(*otelhttp.Transport); ok {
		return hc
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp := *hc
	cp.Transport = otelhttp.NewTransport(base)
	return &cp
}

// Run executes every check in parallel and returns once all have finished. A failing
// check never stops the others; the error is only non-nil when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	results := make([]Result, len(r.checks))

	g, gctx := errgroup.WithContext(ctx)
	if r.parallel > 0 {
		g.SetLimit(r.parallel)
	}
	for i, check := range r.checks {
		g.Go(func() error {
			results[i] = r.runOne(gctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Results: results, Duration: time.Since(start)}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, check Check) Result {
	env := r.newEnv()
	start := time.Now()
	err := check.Run(ctx, env)
	res := Result{Name: check.Name, Err: err, Duration: time.Since(start)}

	// leave nothing signed in on the server
	if env.Session.Refresh() != "" {
		env.Client.Logout(context.WithoutCancel(ctx), env.Session.Refresh())
	}

	if err != nil {
		r.log.Warn("smoke check failed", zap.String("check", check.Name),
			zap.Duration("duration", res.Duration), zap.Error(err))
	} else {
		r.log.Info("smoke check passed", zap.String("check", check.Name),
			zap.Duration("duration", res.Duration))
	}
	return res
}

func (r *Runner) newEnv() *Env {
	sess := session.New(session.NewMemoryStore())
	client := apiclient.New(r.cfg, sess, r.log,
		apiclient.WithHTTPClient(r.httpClient),
		apiclient.WithBaseURL(r.apiURL),
	)
	return &Env{
		Client:      client,
		Session:     sess,
		Auth:        service.NewAuthService(client, sess, r.log),
		HTTP:        r.httpClient,
		Email:       r.cfg.Smoke.Email,
		Password:    r.cfg.Smoke.Password,
		FrontendURL: r.frontendURL,
	}
}
