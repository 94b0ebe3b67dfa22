package app

import "math"

var defaultLocalizer = NewLocalizer("en")

// LastReloadedText formats the time since the last reload using English messages
func LastReloadedText(agoMs int64) string {
	return defaultLocalizer.LastReloadedText(agoMs)
}

// LastReloadedText turns an elapsed time in milliseconds into an age string.
// Each bucket is inclusive of its upper bound: 180 minutes is still "min ago",
// 48 hours is still "hrs ago" and 14 days is still "days ago".
func (l *Localizer) LastReloadedText(agoMs int64) string {
	mins := float64(agoMs) / 60000
	if mins <= 180 {
		return l.i18n("%1 min ago", roundHalfUp(mins))
	}

	hours := mins / 60
	if hours <= 48 {
		return l.i18n("%1 hrs ago", roundHalfUp(hours))
	}

	days := hours / 24
	if days <= 14 {
		return l.i18n("%1 days ago", roundHalfUp(days))
	}

	return l.i18n("long ago")
}

// roundHalfUp rounds .5 towards positive infinity and never yields -0
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
