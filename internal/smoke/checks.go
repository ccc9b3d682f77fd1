package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/google/uuid"
)

const (
	CheckUnauthenticated = "unauthenticated-redirect"
	CheckValidLogin      = "valid-login"
	CheckInvalidLogin    = "invalid-login"
	CheckServiceRequests = "service-requests"
)

// invalidLoginBudget is how long the login form may take to show an error.
const invalidLoginBudget = 5 * time.Second

// Check is one end-to-end scenario. Each check runs with its own signed-out session.
type Check struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// DefaultChecks mirrors the browser suite.
func DefaultChecks() []Check {
	return []Check{
		{Name: CheckUnauthenticated, Run: checkUnauthenticated},
		{Name: CheckValidLogin, Run: checkValidLogin},
		{Name: CheckInvalidLogin, Run: checkInvalidLogin},
		{Name: CheckServiceRequests, Run: checkServiceRequests},
	}
}

func checkUnauthenticated(ctx context.Context, env *Env) error {
	_, err := service.NewDirectoryService(env.Client).Me(ctx)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return fmt.Errorf("me/ without a session: want 401, got %v", describe(err))
	}
	if env.Session.Access() != "" {
		return errors.New("session holds a token after a rejected request")
	}

	if env.FrontendURL == "" {
		return nil
	}
	return env.expectPage(ctx, "/login")
}

func checkValidLogin(ctx context.Context, env *Env) error {
	id, err := env.Auth.SignIn(ctx, env.Email, env.Password)
	if err != nil {
		return fmt.Errorf("sign in as %s: %s", env.Email, apiclient.ErrorMessage(err))
	}

	dash := service.NewDashboardService(env.Client)
	if id.Permissions.CanSeeAllSites {
		if _, err := dash.Get(ctx, 30, nil); err != nil {
			return fmt.Errorf("open dashboard: %s", apiclient.ErrorMessage(err))
		}
	} else if _, err := dash.Site(ctx); err != nil {
		return fmt.Errorf("open site dashboard: %s", apiclient.ErrorMessage(err))
	}

	if env.FrontendURL == "" {
		return nil
	}
	return env.expectPage(ctx, "/")
}

func checkInvalidLogin(ctx context.Context, env *Env) error {
	ctx, cancel := context.WithTimeout(ctx, invalidLoginBudget)
	defer cancel()

	start := time.Now()
	_, err := env.Auth.SignIn(ctx, env.Email, "wrong-"+uuid.NewString())
	elapsed := time.Since(start)

	if err == nil {
		return errors.New("sign in with a wrong password succeeded")
	}
	if errors.Is(err, context.DeadlineExceeded) || elapsed > invalidLoginBudget {
		return fmt.Errorf("no error shown within %s", invalidLoginBudget)
	}
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError {
		return fmt.Errorf("want a rejected login, got %s", describe(err))
	}
	if msg := apiclient.ErrorMessage(err); strings.TrimSpace(msg) == "" {
		return errors.New("rejected login has no displayable message")
	}
	if env.Session.Access() != "" {
		return errors.New("rejected login left a token behind")
	}
	return nil
}

func checkServiceRequests(ctx context.Context, env *Env) error {
	if _, err := env.Auth.SignIn(ctx, env.Email, env.Password); err != nil {
		return fmt.Errorf("sign in as %s: %s", env.Email, apiclient.ErrorMessage(err))
	}
	// an empty list passes
	if _, err := service.NewServiceRequestService(env.Client).List(ctx, model.ServiceRequestFilter{}); err != nil {
		return fmt.Errorf("list service requests: %s", apiclient.ErrorMessage(err))
	}
	return nil
}

// expectPage fetches a frontend route and expects the HTML shell.
func (e *Env) expectPage(ctx context.Context, route string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(e.FrontendURL, "/")+route, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := e.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("open %s: %w", route, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", route, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open %s: status %d", route, resp.StatusCode)
	}
	if !strings.Contains(strings.ToLower(string(body)), "<html") {
		return fmt.Errorf("open %s: not an html page", route)
	}
	return nil
}

func describe(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}
