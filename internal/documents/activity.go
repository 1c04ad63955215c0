package documents

// ActivityEntry is one login/logout pair of the remote activity log.
// Seq grows monotonically per user so that two logins carrying the same
// timestamp string still produce distinct entries.
type ActivityEntry struct {
	Seq        int64   `json:"seq"`
	LoginTime  string  `json:"login_time"`
	LogoutTime *string `json:"logout_time"`
}

// IsOpen reports whether the entry still waits for its logout.
func (e ActivityEntry) IsOpen() bool {
	return e.LogoutTime == nil
}

// ActivityLog is the ordered activity history of a user.
type ActivityLog []ActivityEntry

// LastOpen returns the index of the most recent open entry, or -1.
func (l ActivityLog) LastOpen() int {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].IsOpen() {
			return i
		}
	}
	return -1
}

// HasLogin reports whether an entry with exactly this login time exists.
func (l ActivityLog) HasLogin(loginTime string) bool {
	for _, e := range l {
		if e.LoginTime == loginTime {
			return true
		}
	}
	return false
}

func (l ActivityLog) maxSeq() int64 {
	var m int64
	for _, e := range l {
		if e.Seq > m {
			m = e.Seq
		}
	}
	return m
}

// AppendLogin returns the log with a new open entry for loginTime.
// It reports false and leaves the log untouched when the same login was
// already recorded. Entries left open by an abnormal termination are closed
// at loginTime so that at most one entry is ever open.
func (l ActivityLog) AppendLogin(loginTime string) (ActivityLog, bool) {
	if l.HasLogin(loginTime) {
		return l, false
	}

	out := make(ActivityLog, len(l), len(l)+1)
	copy(out, l)

	for i := range out {
		if out[i].IsOpen() {
			closedAt := loginTime
			out[i].LogoutTime = &closedAt
		}
	}

	out = append(out, ActivityEntry{Seq: l.maxSeq() + 1, LoginTime: loginTime})
	return out, true
}

// CloseOpen returns the log with the last open entry closed at logoutTime.
// It reports false when there is no open entry.
func (l ActivityLog) CloseOpen(logoutTime string) (ActivityLog, bool) {
	i := l.LastOpen()
	if i < 0 {
		return l, false
	}

	out := make(ActivityLog, len(l))
	copy(out, l)
	out[i].LogoutTime = &logoutTime
	return out, true
}
