// Package router keeps the stack of TUI screens. Screens never touch the
// stack directly. They return one of the navigation commands below and the
// app hands the resulting message to Update.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/critree/internal/screen"
)

type (
	PushScreenMsg    struct{ Screen screen.Screen }
	ReplaceScreenMsg struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
	PopToRootMsg     struct{}
)

// Go opens s on top of the current screen.
func Go(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Swap replaces the current screen with s.
func Swap(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

// Back closes the current screen.
func Back() tea.Cmd {
	return func() tea.Msg { return PopScreenMsg{} }
}

// Home returns to the root screen.
func Home() tea.Cmd {
	return func() tea.Msg { return PopToRootMsg{} }
}

// Router is a screen stack. The root screen is never popped.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) Pop() tea.Cmd {
	r.truncate(len(r.stack) - 1)
	return nil
}

func (r *Router) PopToRoot() tea.Cmd {
	r.truncate(1)
	return nil
}

// Replace swaps the top screen. The replaced screen is not re-initialised
// if it comes back later; its replacement is.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

func (r *Router) truncate(n int) {
	if n >= 1 && n < len(r.stack) {
		clear(r.stack[n:])
		r.stack = r.stack[:n]
	}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

// Busy reports whether the active screen asked not to be navigated away
// from.
func (r *Router) Busy() bool {
	b, ok := r.Active().(screen.Busy)
	return ok && b.Busy()
}

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case PopToRootMsg:
		return r.PopToRoot()
	}
	top := r.Active()
	if top == nil {
		return nil
	}
	next, cmd := top.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if top := r.Active(); top != nil {
		return top.View(width, height)
	}
	return ""
}
