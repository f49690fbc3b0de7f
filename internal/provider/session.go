package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const crumbPath = "/v1/test/getcrumb"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// userAgents hands out browser user agents round-robin.
type userAgents struct {
	list []string
	n    atomic.Uint64
}

func newUserAgents(list []string) *userAgents {
	if len(list) == 0 {
		list = defaultUserAgents
	}
	return &userAgents{list: list}
}

func (u *userAgents) next() string {
	i := u.n.Add(1) - 1
	return u.list[i%uint64(len(u.list))]
}

// session holds the Yahoo cookie + crumb pair. Cookies live in the resty
// client's jar; the crumb must accompany quoteSummary requests.
type session struct {
	client    *resty.Client
	cookieURL string
	agents    *userAgents

	mu    sync.Mutex
	crumb string
}

// get returns the cached crumb, establishing a session first if needed.
func (s *session) get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.crumb != "" {
		return s.crumb, nil
	}

	ua := s.agents.next()

	// Only the Set-Cookie matters here; the status is usually 404.
	if s.cookieURL != "" {
		_, _ = s.client.R().SetContext(ctx).SetHeader("User-Agent", ua).Get(s.cookieURL)
	}

	resp, err := s.client.R().SetContext(ctx).SetHeader("User-Agent", ua).Get(crumbPath)
	if err != nil {
		return "", fmt.Errorf("fetching yahoo crumb: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetching yahoo crumb: unexpected status %d", resp.StatusCode())
	}

	crumb := strings.TrimSpace(resp.String())
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("fetching yahoo crumb: malformed crumb")
	}

	s.crumb = crumb
	return crumb, nil
}

// invalidate drops the crumb so the next request starts a new session.
func (s *session) invalidate() {
	s.mu.Lock()
	s.crumb = ""
	s.mu.Unlock()
}
