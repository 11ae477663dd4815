package ports

// Settings exposes the runtime-tunable behavior the services read on every
// call. Implementations may change values between calls.
type Settings interface {
	NotifySelfComment() bool
	MaxPageSize() int
}

// StaticSettings is a fixed Settings value
type StaticSettings struct {
	SelfCommentNotifications bool
	PageSizeLimit            int
}

func (s StaticSettings) NotifySelfComment() bool { return s.SelfCommentNotifications }

func (s StaticSettings) MaxPageSize() int {
	if s.PageSizeLimit <= 0 {
		return 100
	}
	return s.PageSizeLimit
}
