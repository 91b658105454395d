package session

import (
	sess "github.com/abhisek/ieltsprep/internal/session"
)

// resumeMsg is sent once stored progress has been read.
type resumeMsg struct {
	Result sess.ResumeResult
}

// timerTickMsg is sent every second while the section clock runs. Gen is
// the clock generation that scheduled it; older generations are dropped.
type timerTickMsg struct {
	Gen int
}

// autosaveTickMsg is sent when the next autosave should be due.
type autosaveTickMsg struct {
	Gen int
}

// saveDoneMsg reports the outcome of a background write.
type saveDoneMsg struct {
	Err      error
	Explicit bool
}
