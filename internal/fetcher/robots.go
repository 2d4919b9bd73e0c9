package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RobotsManager fetches, caches, and enforces robots.txt per host.
type RobotsManager struct {
	cache     map[string]*robotsData
	mu        sync.RWMutex
	client    *http.Client
	userAgent string
	agentName string
}

type robotsData struct {
	disallowed []string
	allowed    []string
	crawlDelay time.Duration
}

// NewRobotsManager creates a RobotsManager that fetches robots.txt with
// client and matches groups against the product token of userAgent.
func NewRobotsManager(client *http.Client, userAgent string) *RobotsManager {
	name := strings.ToLower(userAgent)
	if i := strings.IndexAny(name, "/ "); i > 0 {
		name = name[:i]
	}
	return &RobotsManager{
		cache:     make(map[string]*robotsData),
		client:    client,
		userAgent: userAgent,
		agentName: name,
	}
}

// IsAllowed checks if u is allowed by its host's robots.txt. A missing or
// unreadable robots.txt allows everything.
func (rm *RobotsManager) IsAllowed(ctx context.Context, u *url.URL) bool {
	if u == nil {
		return true
	}
	data := rm.getRobotsData(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	// Allow rules override disallow rules.
	for _, pattern := range data.allowed {
		if matchRobotsPattern(pattern, path) {
			return true
		}
	}
	for _, pattern := range data.disallowed {
		if matchRobotsPattern(pattern, path) {
			return false
		}
	}
	return true
}

// CrawlDelay returns the crawl-delay for an origin ("scheme://host"), if cached.
func (rm *RobotsManager) CrawlDelay(origin string) time.Duration {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	if data := rm.cache[origin]; data != nil {
		return data.crawlDelay
	}
	return 0
}

func (rm *RobotsManager) getRobotsData(ctx context.Context, origin string) *robotsData {
	rm.mu.RLock()
	data, ok := rm.cache[origin]
	rm.mu.RUnlock()
	if ok {
		return data
	}

	data = rm.fetchRobotsTxt(ctx, origin)

	rm.mu.Lock()
	rm.cache[origin] = data
	rm.mu.Unlock()
	return data
}

func (rm *RobotsManager) fetchRobotsTxt(ctx context.Context, origin string) *robotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rm.userAgent)

	resp, err := rm.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}
	return parseRobotsTxt(string(body), rm.agentName)
}

// parseRobotsTxt collects the rules of the "*" group and of any group
// naming agent.
func parseRobotsTxt(content, agent string) *robotsData {
	data := &robotsData{}
	inOurSection := false

	for _, line := range strings.Split(content, "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			ua := strings.ToLower(value)
			inOurSection = ua == "*" || (agent != "" && strings.Contains(ua, agent))
		case "disallow":
			if inOurSection && value != "" {
				data.disallowed = append(data.disallowed, value)
			}
		case "allow":
			if inOurSection && value != "" {
				data.allowed = append(data.allowed, value)
			}
		case "crawl-delay":
			if inOurSection {
				var delay float64
				if _, err := fmt.Sscanf(value, "%f", &delay); err == nil {
					data.crawlDelay = time.Duration(delay * float64(time.Second))
				}
			}
		}
	}
	return data
}

// matchRobotsPattern checks if a URL path matches a robots.txt pattern.
// Supports * (any sequence) and $ (end of URL).
func matchRobotsPattern(pattern, path string) bool {
	if pattern == "" {
		return false
	}
	mustEnd := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")

	if !strings.Contains(pattern, "*") {
		if mustEnd {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}

	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx < 0 || (i == 0 && idx != 0) {
			return false
		}
		pos += idx + len(part)
	}
	if mustEnd {
		return pos == len(path) || strings.HasSuffix(pattern, "*")
	}
	return true
}
