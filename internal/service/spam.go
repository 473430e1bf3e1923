package service

import (
	"regexp"
	"unicode"
)

// Spam heuristic signal names, also used as metric labels.
const (
	SignalRepeatedChars = "repeated_chars"
	SignalExcessiveCaps = "excessive_caps"
	SignalURL           = "url"
	SignalBlacklisted   = "blacklisted_word"
)

const (
	repeatRunLength = 5
	capsMinLength   = 10
	capsMaxRatio    = 0.7
)

var (
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	blacklistPattern = regexp.MustCompile(`(?i)\b(viagra|casino|poker|lottery)\b`)
)

// spamSignals returns the heuristics the content trips, in a fixed order.
func spamSignals(content string) []string {
	var signals []string
	if hasRepeatedRun(content, repeatRunLength) {
		signals = append(signals, SignalRepeatedChars)
	}
	if capsRatioExceeded(content) {
		signals = append(signals, SignalExcessiveCaps)
	}
	if urlPattern.MatchString(content) {
		signals = append(signals, SignalURL)
	}
	if blacklistPattern.MatchString(content) {
		signals = append(signals, SignalBlacklisted)
	}
	return signals
}

func hasRepeatedRun(content string, n int) bool {
	var prev rune
	run := 0
	for i, r := range content {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

// capsRatioExceeded counts upper-case letters against the whole length.
func capsRatioExceeded(content string) bool {
	runes := []rune(content)
	if len(runes) <= capsMinLength {
		return false
	}
	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper)/float64(len(runes)) > capsMaxRatio
}
