package views

import "time"

// NoticeTTL is how long a notice stays visible without further user action.
const NoticeTTL = 3 * time.Second

// NoticeKind distinguishes success from error notices.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota + 1
	NoticeError
)

// Notice is a transient message shown after a mutation.
type Notice struct {
	Kind NoticeKind
	Text string
	at   time.Time
}

// IsZero reports whether there is no notice.
func (n Notice) IsZero() bool { return n.Kind == 0 }

func (n Notice) expired(now time.Time) bool {
	return !n.IsZero() && now.Sub(n.at) >= NoticeTTL
}
