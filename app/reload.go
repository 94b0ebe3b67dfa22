package app

import "time"

// ReloadDelay is how long to wait before retrying after a failed load
const ReloadDelay = 10 * time.Minute

// ReloadState holds the widget's reload bookkeeping for one place.
// Timestamps are milliseconds since the Unix epoch, zero when unset.
type ReloadState struct {
	LastReloaded int64 `json:"lastReloaded"`
	NextReload   int64 `json:"nextReload,omitempty"`
	LoadingError bool  `json:"loadingError"`
}

// ScheduleDataReload flags a loading error and returns the time of the next
// allowed reload, ReloadDelay after now. The delay never grows.
func (s *ReloadState) ScheduleDataReload(now time.Time) int64 {
	s.LoadingError = true
	return now.UnixMilli() + ReloadDelay.Milliseconds()
}

// ScheduleDataReload is ReloadState.ScheduleDataReload at the current time
func ScheduleDataReload(s *ReloadState) int64 {
	return s.ScheduleDataReload(time.Now())
}

// MarkReloaded records a successful load at now
func (s *ReloadState) MarkReloaded(now time.Time) {
	if ms := now.UnixMilli(); ms > s.LastReloaded {
		s.LastReloaded = ms
	}
	s.LoadingError = false
	s.NextReload = 0
}

// ReloadAllowed reports whether a new load may start at now
func (s ReloadState) ReloadAllowed(now time.Time) bool {
	return !s.LoadingError || now.UnixMilli() >= s.NextReload
}
