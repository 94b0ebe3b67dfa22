package app

import (
	"fmt"
	"time"
)

// Status is the activity flag shown by the widget shell
type Status int

const (
	// PassiveStatus means the data has not been reloaded recently
	PassiveStatus Status = iota
	// ActiveStatus means the data was reloaded within the active timeout
	ActiveStatus
)

func (s Status) String() string {
	switch s {
	case ActiveStatus:
		return "active"
	case PassiveStatus:
		return "passive"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status as "active" or "passive"
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "active" or "passive"
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = ActiveStatus
	case "passive":
		*s = PassiveStatus
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// ReloadedAgoMs returns the milliseconds elapsed since lastReloaded.
// An unset (zero) lastReloaded counts from the Unix epoch.
func ReloadedAgoMs(lastReloaded int64, now time.Time) int64 {
	return now.UnixMilli() - lastReloaded
}

// PlasmoidStatus reports ActiveStatus while the last reload is younger than
// inTrayActiveTimeoutSec, PassiveStatus from that point on.
func PlasmoidStatus(lastReloaded int64, inTrayActiveTimeoutSec int, now time.Time) Status {
	reloadedAgoMs := ReloadedAgoMs(lastReloaded, now)
	logger.Debug("plasmoid status",
		"lastReloaded", lastReloaded,
		"inTrayActiveTimeoutSec", inTrayActiveTimeoutSec,
		"reloadedAgoMs", reloadedAgoMs,
	)
	if reloadedAgoMs < int64(inTrayActiveTimeoutSec)*1000 {
		return ActiveStatus
	}
	return PassiveStatus
}
