package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"astrin/internal/lifecycle"
)

// screen is one mounted view of the app. Only one screen is mounted at a
// time; Unmount releases everything Mount acquired.
type screen interface {
	Mount() tea.Cmd
	Unmount()
	SetSize(width, height int)
	Update(msg tea.Msg) tea.Cmd
	View() string
	// CapturesInput reports whether plain letter keys belong to the screen.
	CapturesInput() bool
}

// source is what a feed view reads from: a Fetch or a Poller.
type source[T any] interface {
	State() lifecycle.State[T]
	Close()
}

// feedBinding describes how one data domain is fetched and drawn.
type feedBinding[T any] struct {
	request  lifecycle.RequestFunc[T]
	interval time.Duration // polled when positive
	isEmpty  func(T) bool
	empty    string
	project  func(v T, width int) string
}

// feedView binds one lifecycle instance to the screen. The lifecycle is
// created on Mount and closed on Unmount, so a remount starts from Idle.
type feedView[T any] struct {
	binding feedBinding[T]
	opts    []lifecycle.Option

	src     source[T]
	fetch   *lifecycle.Fetch[T]
	handle  *lifecycle.PollHandle
	pollErr error

	spinner  spinner.Model
	viewport viewport.Model
	width    int
}

func newFeedView[T any](b feedBinding[T], opts ...lifecycle.Option) *feedView[T] {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = TitleStyle
	return &feedView[T]{
		binding:  b,
		opts:     opts,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		width:    80,
	}
}

func (v *feedView[T]) Mount() tea.Cmd {
	if v.binding.interval > 0 {
		p := lifecycle.NewPoller[T](v.opts...)
		v.src = p
		v.handle, v.pollErr = p.StartPolling(context.Background(), v.binding.request, v.binding.interval)
	} else {
		f := lifecycle.NewFetch[T](v.opts...)
		v.src = f
		v.fetch = f
		f.Start(context.Background(), v.binding.request)
	}
	v.sync()
	return v.spinner.Tick
}

func (v *feedView[T]) Unmount() {
	if v.handle != nil {
		v.handle.Stop()
	}
	if v.src != nil {
		v.src.Close()
	}
	v.src = nil
	v.fetch = nil
	v.handle = nil
}

func (v *feedView[T]) SetSize(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = height
	v.sync()
}

func (v *feedView[T]) CapturesInput() bool { return false }

func (v *feedView[T]) state() lifecycle.State[T] {
	if v.src == nil {
		return lifecycle.State[T]{}
	}
	return v.src.State()
}

// refresh restarts a single-shot fetch. Polled views refresh themselves.
func (v *feedView[T]) refresh() tea.Cmd {
	if v.fetch == nil {
		return nil
	}
	v.fetch.Start(context.Background(), v.binding.request)
	return v.spinner.Tick
}

func (v *feedView[T]) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		v.spinner, cmd = v.spinner.Update(msg)
	case tea.KeyMsg:
		if msg.String() == "r" {
			cmd = v.refresh()
		} else {
			v.viewport, cmd = v.viewport.Update(msg)
		}
	case tea.MouseMsg:
		v.viewport, cmd = v.viewport.Update(msg)
	}
	v.sync()
	return cmd
}

func (v *feedView[T]) sync() {
	offset := v.viewport.YOffset
	v.viewport.SetContent(v.render())
	v.viewport.SetYOffset(offset)
}

func (v *feedView[T]) render() string {
	if v.pollErr != nil {
		return ErrorStyle.Render("Error: " + v.pollErr.Error())
	}
	loading := v.spinner.View() + " " + DimStyle.Render("Loading...")
	width := v.width
	return renderState(v.state(), loading, v.binding.isEmpty, v.binding.empty, func(val T) string {
		return v.binding.project(val, width)
	})
}

func (v *feedView[T]) View() string {
	return v.viewport.View()
}

// renderState picks the branch for one snapshot: Idle and Loading show the
// progress indicator, Failure the error text, Success either the explicit
// empty message or the projection. Empty is never rendered as an error.
func renderState[T any](st lifecycle.State[T], loading string, isEmpty func(T) bool, empty string, project func(T) string) string {
	switch st.Phase {
	case lifecycle.PhaseFailure:
		msg := "unknown error"
		if st.Err != nil && strings.TrimSpace(st.Err.Message) != "" {
			msg = st.Err.Message
		}
		return ErrorStyle.Render("Error: " + msg)
	case lifecycle.PhaseSuccess:
		if isEmpty != nil && isEmpty(st.Value) {
			return DimStyle.Render(empty)
		}
		return project(st.Value)
	default:
		return loading
	}
}
