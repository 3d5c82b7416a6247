package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeChallengeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected bool
	}{
		{"Cloudflare interstitial", "Just a moment...", true},
		{"Cloudflare interstitial russian", "Один момент…", true},
		{"Attention required", "Attention Required! | Cloudflare", true},
		{"DDoS-Guard", "DDoS-Guard", true},
		{"Case insensitive", "JUST A MOMENT", true},
		{"Real catalog page", "Электроинструмент — купить в интернет-магазине", false},
		{"Empty title", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, looksLikeChallengeTitle(tt.title))
		})
	}
}

func TestJitterBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := jitter(time.Second, 4*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 4*time.Second)
	}
}

func TestIsBrowserGone(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Nil", nil, false},
		{"Connection closed", errors.New("Connection closed"), true},
		{"Wrapped driver error", errors.New("page 3: target page, context or browser has been closed"), true},
		{"Target closed", errors.New("Target closed"), true},
		{"Navigation timeout", errors.New("timeout 30000ms exceeded"), false},
		{"Selector miss", errors.New("waiting for selector failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBrowserGone(tt.err))
		})
	}
}
