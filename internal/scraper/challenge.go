package scraper

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Known anti-bot interstitial signals. Title substrings are matched
// case-insensitively; selectors are probed against the live DOM.
var (
	challengeTitleMarkers = []string{
		"just a moment",
		"один момент",
		"attention required",
		"checking your browser",
		"ddos-guard",
	}

	challengeSelectors = []string{
		"#challenge-form",
		"#challenge-running",
		"#cf-chl-widget",
		".cf-browser-verification",
	}
)

func looksLikeChallengeTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range challengeTitleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// WaitForChallenge polls the page until the anti-bot interstitial is gone.
// Challenge pages are nondeterministic in duration, so the poll interval is
// randomized between 1 and 4 seconds. Returns true as soon as neither the
// title nor the DOM shows a challenge signal, false once timeout elapses.
// Either way callers proceed with whatever content loaded; the boolean is
// informational.
func WaitForChallenge(ctx context.Context, page playwright.Page, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		if !pageChallenged(page) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(jitter(time.Second, 4*time.Second)):
		}
	}
}

func pageChallenged(page playwright.Page) bool {
	title, err := page.Title()
	if err == nil && looksLikeChallengeTitle(title) {
		return true
	}

	for _, sel := range challengeSelectors {
		if count, err := page.Locator(sel).Count(); err == nil && count > 0 {
			return true
		}
	}
	return false
}

// jitter returns a random duration in [min, max). Inter-request delays are
// randomized so the session reads as a slow human rather than a burst of
// evenly spaced automation.
func jitter(min, max time.Duration) time.Duration {
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// pause sleeps a randomized 1-4 s between navigations, honoring ctx.
func pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(jitter(time.Second, 4*time.Second)):
	}
}
