package model

import "time"

// TimeWindow is a preferred daily window expressed in local hours.
// EndHour is exclusive.
type TimeWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// MemberPreferences holds the per-member scheduling settings.
type MemberPreferences struct {
	MemberID         string         `json:"member_id"`
	AutoAcceptCharge bool           `json:"auto_accept_charge"`
	AutoAcceptClean  bool           `json:"auto_accept_clean"`
	LeadTimeHours    int            `json:"lead_time_hours"`
	PreferredDays    []time.Weekday `json:"preferred_days,omitempty"`
	PreferredWindows []TimeWindow   `json:"preferred_windows,omitempty"`
}

// DefaultPreferences returns the settings applied when a member has not
// configured anything.
func DefaultPreferences(memberID string) MemberPreferences {
	return MemberPreferences{MemberID: memberID, LeadTimeHours: 48}
}

// PrefersDay reports whether wd is acceptable to the member. An empty
// preferred-day list means any day.
func (p MemberPreferences) PrefersDay(wd time.Weekday) bool {
	if len(p.PreferredDays) == 0 {
		return true
	}
	for _, d := range p.PreferredDays {
		if d == wd {
			return true
		}
	}
	return false
}
