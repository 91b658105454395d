package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	sess "github.com/abhisek/ieltsprep/internal/session"
	"github.com/abhisek/ieltsprep/internal/ui/components"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
)

// pendingAction is a finishing step deferred until an in-flight write lands,
// so an older snapshot can never overwrite the final record.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingAdvance
	pendingExpire
	pendingQuit
)

// SessionScreen implements screen.Screen for one section attempt.
type SessionScreen struct {
	deps screen.Deps
	ctrl *sess.Controller

	loaded  bool
	resumed bool
	errMsg  string

	current int
	choice  components.ChoiceList
	inputs  []components.TextInput
	field   int

	showPassage   bool
	passageOffset int

	quitConfirm bool
	notice      string
	firstSave   bool
	pending     pendingAction
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Disposer = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a SessionScreen for sec.
func New(deps screen.Deps, sec *question.TestSection) *SessionScreen {
	return &SessionScreen{
		deps: deps,
		ctrl: sess.New(sess.Options{
			Section:  sec,
			Store:    deps.Store,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
			Autosave: deps.Autosave,
		}),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		return resumeMsg{Result: ctrl.Resume(context.Background())}
	}
}

func (s *SessionScreen) Title() string {
	sec := s.ctrl.Section()
	return fmt.Sprintf("%s · Section %d", sec.Kind.DisplayName(), sec.SectionNumber)
}

// Controller exposes the underlying session controller.
func (s *SessionScreen) Controller() *sess.Controller { return s.ctrl }

// HandlesEscape claims esc while an attempt is running so leaving goes
// through the save-and-confirm flow.
func (s *SessionScreen) HandlesEscape() bool {
	return s.quitConfirm || s.ctrl.Phase() == sess.PhaseInProgress
}

// Dispose stops the section clock and the autosaver.
func (s *SessionScreen) Dispose() {
	s.ctrl.Dispose()
}

// Close saves a running attempt before the program exits.
func (s *SessionScreen) Close() {
	if s.ctrl.Phase() == sess.PhaseInProgress {
		_ = s.ctrl.Save(context.Background())
	}
	s.ctrl.Dispose()
}

func (s *SessionScreen) Status() string {
	if s.ctrl.Phase() != sess.PhaseInProgress {
		return ""
	}
	var clock string
	if rem, timed := s.ctrl.Remaining(); timed {
		clock = layout.FormatClock(rem) + " left"
	} else {
		clock = layout.FormatClock(s.ctrl.Elapsed())
	}
	if ind := saveIndicator(s.ctrl.Autosaver().Status(s.deps.Clock.Now())); ind != "" {
		return clock + "  ·  " + ind
	}
	return clock
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Save & leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.ctrl.Phase() {
	case sess.PhaseInstructions:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Begin"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseInProgress:
		hints := []layout.KeyHint{
			{Key: "Tab", Description: "Next question"},
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Ctrl+N", Description: "Next section"},
		}
		if s.ctrl.Section().Kind == question.KindListening {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Replay"})
		} else {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Passage"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
	}
	return nil
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if !s.loaded {
		return renderLoading(width, height, "Loading your progress...")
	}
	if s.quitConfirm {
		return renderQuitConfirm(width, height)
	}
	switch s.ctrl.Phase() {
	case sess.PhaseInstructions:
		return s.renderInstructions(width, height)
	case sess.PhaseInProgress:
		if s.pending != pendingNone {
			return renderLoading(width, height, "Saving your answers...")
		}
		return s.renderQuestionView(width, height)
	}
	return renderLoading(width, height, "Section complete.")
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resumeMsg:
		return s.handleResume(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case autosaveTickMsg:
		return s.handleAutosaveTick(msg)

	case saveDoneMsg:
		return s.handleSaveDone(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleResume(msg resumeMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	sec := s.ctrl.Section()
	switch msg.Result {
	case sess.ResumeCompleted:
		return s, router.Navigate(sess.ResultsRoute(sec.Kind, sec.TestID, sec.ID))
	case sess.ResumeRestored:
		s.resumed = true
	}
	return s, nil
}

func (s *SessionScreen) start() (screen.Screen, tea.Cmd) {
	gen, err := s.ctrl.Start()
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	focus := s.showQuestion(0)
	return s, tea.Batch(tickCmd(gen), s.autosaveCmd(gen), focus)
}

func (s *SessionScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	clk := s.ctrl.Clock()
	if s.ctrl.Phase() != sess.PhaseInProgress || !clk.Running() || msg.Gen != clk.Generation() {
		return s, nil
	}
	if s.ctrl.Tick(msg.Gen, s.deps.Clock.Now()) {
		return s, s.finish(pendingExpire)
	}
	return s, tickCmd(msg.Gen)
}

func (s *SessionScreen) handleAutosaveTick(msg autosaveTickMsg) (screen.Screen, tea.Cmd) {
	clk := s.ctrl.Clock()
	if s.ctrl.Phase() != sess.PhaseInProgress || !clk.Running() || msg.Gen != clk.Generation() {
		return s, nil
	}
	var cmds []tea.Cmd
	if rec, ok := s.ctrl.Autosaver().Begin(s.deps.Clock.Now()); ok {
		cmds = append(cmds, s.writeCmd(rec, false))
	}
	cmds = append(cmds, s.autosaveCmd(msg.Gen))
	return s, tea.Batch(cmds...)
}

func (s *SessionScreen) handleSaveDone(msg saveDoneMsg) (screen.Screen, tea.Cmd) {
	s.ctrl.Autosaver().Complete(s.deps.Clock.Now(), msg.Err)
	if msg.Explicit {
		if msg.Err != nil {
			s.notice = "Save failed: " + msg.Err.Error()
		} else {
			s.notice = "Progress saved."
		}
	}
	if s.pending != pendingNone {
		action := s.pending
		s.pending = pendingNone
		return s, s.finish(action)
	}
	return s, nil
}

// finish runs a completing action, or defers it while a write is in flight.
func (s *SessionScreen) finish(action pendingAction) tea.Cmd {
	if s.saving() {
		s.pending = action
		return nil
	}
	ctx := context.Background()
	switch action {
	case pendingAdvance:
		route, err := s.ctrl.Advance(ctx)
		if err != nil {
			s.notice = advanceNotice(err)
			return nil
		}
		return router.Navigate(route)
	case pendingExpire:
		route, err := s.ctrl.Expire(ctx)
		if err != nil {
			return nil
		}
		return router.Navigate(route)
	case pendingQuit:
		_ = s.ctrl.Save(ctx)
		s.ctrl.Dispose()
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return nil
}

func (s *SessionScreen) saving() bool {
	return s.ctrl.Autosaver().Status(s.deps.Clock.Now()).Status == autosave.StatusSaving
}

func advanceNotice(err error) string {
	if errors.Is(err, sess.ErrIncompleteAdvance) {
		return "Answer every question to continue."
	}
	return err.Error()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.loaded || s.pending != pendingNone {
		return s, nil
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			return s, s.finish(pendingQuit)
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.ctrl.Phase() {
	case sess.PhaseInstructions:
		if key == "enter" {
			return s.start()
		}
		return s, nil
	case sess.PhaseInProgress:
		return s.handleAnswerKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleAnswerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.quitConfirm = true
		return s, nil
	case "tab":
		return s, s.showQuestion(s.current + 1)
	case "shift+tab":
		return s, s.showQuestion(s.current - 1)
	case "ctrl+s":
		return s, s.explicitSave()
	case "ctrl+n":
		if !s.ctrl.CanAdvance() {
			s.notice = "Answer every question to continue."
			return s, nil
		}
		return s, s.finish(pendingAdvance)
	case "ctrl+r":
		n, err := s.ctrl.RecordReplay()
		if err != nil {
			s.notice = err.Error()
		} else {
			s.notice = fmt.Sprintf("Replaying recording (%d replays).", n)
		}
		return s, nil
	case "ctrl+p":
		if s.ctrl.Section().Passage != "" {
			s.showPassage = !s.showPassage
		}
		return s, nil
	}

	if s.showPassage {
		switch msg.String() {
		case "up", "k":
			if s.passageOffset > 0 {
				s.passageOffset--
			}
		case "down", "j":
			s.passageOffset++
		}
		return s, nil
	}

	return s, s.editAnswer(msg)
}

// editAnswer routes a key to the widget of the focused question and
// records the resulting answer.
func (s *SessionScreen) editAnswer(msg tea.KeyMsg) tea.Cmd {
	q := s.question()

	if q.Type.IsChoice() {
		var changed bool
		s.choice, changed = s.choice.Update(msg)
		if !changed {
			return nil
		}
		return s.setAnswer(q.ID, question.Single(s.choice.Value()))
	}

	if len(s.inputs) == 0 {
		return nil
	}

	if len(q.Fields) > 0 {
		switch msg.String() {
		case "up":
			return s.focusField(s.field - 1)
		case "down", "enter":
			return s.focusField(s.field + 1)
		}
	}

	var cmd tea.Cmd
	var changed bool
	s.inputs[s.field], cmd, changed = s.inputs[s.field].Update(msg)
	if !changed {
		return cmd
	}

	var ans question.Answer
	if len(q.Fields) > 0 {
		prev, _ := s.ctrl.Answer(q.ID)
		ans = prev.WithPart(s.field, len(q.Fields), s.inputs[s.field].Value())
	} else {
		ans = question.Single(s.inputs[s.field].Value())
	}
	return tea.Batch(cmd, s.setAnswer(q.ID, ans))
}

func (s *SessionScreen) setAnswer(id string, a question.Answer) tea.Cmd {
	if err := s.ctrl.SetAnswer(id, a); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.notice = ""
	// The first answer of a fresh attempt creates its record right away.
	if s.ctrl.Persisted() || s.firstSave {
		return nil
	}
	rec, ok := s.ctrl.Autosaver().BeginFlush(s.deps.Clock.Now())
	if !ok {
		return nil
	}
	s.firstSave = true
	return s.writeCmd(rec, false)
}

func (s *SessionScreen) explicitSave() tea.Cmd {
	rec, ok := s.ctrl.Autosaver().BeginFlush(s.deps.Clock.Now())
	if !ok {
		s.notice = "A save is already in progress."
		return nil
	}
	return s.writeCmd(rec, true)
}

// writeCmd writes rec off the update loop and reports back with saveDoneMsg.
func (s *SessionScreen) writeCmd(rec *progress.SectionProgress, explicit bool) tea.Cmd {
	store, key := s.deps.Store, s.ctrl.Key()
	return func() tea.Msg {
		err := store.Save(context.Background(), key, rec)
		return saveDoneMsg{Err: err, Explicit: explicit}
	}
}

// showQuestion focuses question i, wrapping around, and rebuilds its widget
// from the stored answer.
func (s *SessionScreen) showQuestion(i int) tea.Cmd {
	qs := s.ctrl.Section().Questions
	if len(qs) == 0 {
		return nil
	}
	s.current = (i%len(qs) + len(qs)) % len(qs)
	s.field = 0
	s.inputs = nil

	q := qs[s.current]
	ans, _ := s.ctrl.Answer(q.ID)
	switch {
	case q.Type.IsChoice():
		choices := q.Choices()
		s.choice = components.NewChoiceList(choices, components.IndexOf(choices, ans.Value()))
		return nil
	case len(q.Fields) > 0:
		for j, label := range q.Fields {
			in := components.NewTextInput(label, ans.Part(j), q.WordLimit, 80)
			if j > 0 {
				in.Blur()
			}
			s.inputs = append(s.inputs, in)
		}
	default:
		s.inputs = []components.TextInput{components.NewTextInput("", ans.Value(), q.WordLimit, 200)}
	}
	return s.inputs[0].Init()
}

func (s *SessionScreen) focusField(i int) tea.Cmd {
	if i < 0 || i >= len(s.inputs) {
		return nil
	}
	s.inputs[s.field].Blur()
	s.field = i
	return s.inputs[i].Focus()
}

func (s *SessionScreen) question() question.Question {
	return s.ctrl.Section().Questions[s.current]
}

// tickCmd returns a 1-second tick command for clock generation gen.
func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{Gen: gen}
	})
}

// autosaveCmd schedules the next autosave check.
func (s *SessionScreen) autosaveCmd(gen int) tea.Cmd {
	d := s.ctrl.Autosaver().Until(s.deps.Clock.Now())
	if d <= 0 {
		d = time.Second
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return autosaveTickMsg{Gen: gen}
	})
}
