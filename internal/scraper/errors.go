package scraper

import (
	"strings"
)

// Playwright surfaces a dead browser process only through its error text;
// there is no typed signal short of reaching into the driver transport.
// The substring match is a known brittleness against driver upgrades.
var browserGoneMarkers = []string{
	"connection closed",
	"has been closed",
	"browser closed",
	"target closed",
}

// IsBrowserGone reports whether err means the browser process itself died,
// as opposed to a single navigation or parse failing. Callers escalate
// these to a full relaunch: in-page automation state cannot be trusted
// after the process goes away.
func IsBrowserGone(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range browserGoneMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
