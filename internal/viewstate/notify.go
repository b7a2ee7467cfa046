package viewstate

import (
	"slices"
	"time"
)

// DefaultNoticeTTL is how long a notification stays visible.
const DefaultNoticeTTL = 3 * time.Second

// NoticeLevel is the severity of one notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// String returns a stable lowercase name.
func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one transient notification.
type Notice struct {
	ID        uint64
	Level     NoticeLevel
	Message   string
	ExpiresAt time.Time
}

// Notifier keeps transient notifications until they expire.
type Notifier struct {
	ttl    time.Duration
	nextID uint64
	items  []Notice
}

// NewNotifier constructs a notifier; ttl <= 0 uses DefaultNoticeTTL.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notifier{ttl: ttl}
}

// TTL returns the notice lifetime.
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Push adds a notice expiring ttl after now.
func (n *Notifier) Push(level NoticeLevel, message string, now time.Time) Notice {
	n.nextID++
	notice := Notice{
		ID:        n.nextID,
		Level:     level,
		Message:   message,
		ExpiresAt: now.Add(n.ttl),
	}
	n.items = append(n.items, notice)
	return notice
}

// Expire drops notices past their deadline and reports how many were removed.
func (n *Notifier) Expire(now time.Time) int {
	before := len(n.items)
	n.items = slices.DeleteFunc(n.items, func(item Notice) bool {
		return !now.Before(item.ExpiresAt)
	})
	return before - len(n.items)
}

// Dismiss removes one notice by id.
func (n *Notifier) Dismiss(id uint64) {
	n.items = slices.DeleteFunc(n.items, func(item Notice) bool {
		return item.ID == id
	})
}

// Active returns notices still visible at now, oldest first.
func (n *Notifier) Active(now time.Time) []Notice {
	out := make([]Notice, 0, len(n.items))
	for _, item := range n.items {
		if now.Before(item.ExpiresAt) {
			out = append(out, item)
		}
	}
	return out
}

// Latest returns the newest notice visible at now.
func (n *Notifier) Latest(now time.Time) (Notice, bool) {
	for i := len(n.items) - 1; i >= 0; i-- {
		if now.Before(n.items[i].ExpiresAt) {
			return n.items[i], true
		}
	}
	return Notice{}, false
}
