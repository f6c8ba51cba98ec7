package welcome

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/critree/internal/router"
	"github.com/abhisek/critree/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newWelcome() (*WelcomeScreen, *int) {
	built := 0
	return New(func() screen.Screen {
		built++
		return &stubScreen{}
	}), &built
}

func advance(w *WelcomeScreen, frames int) {
	for range frames {
		w.Update(frameMsg{})
	}
}

func TestTreeGrowsOneLevelAtATime(t *testing.T) {
	w, _ := newWelcome()
	for want := 1; want <= len(treeLevels); want++ {
		if got := w.levels(); got != want {
			t.Fatalf("frame %d: levels = %d, want %d", w.frame, got, want)
		}
		advance(w, framesPerLevel)
	}
	advance(w, 20)
	if w.levels() != len(treeLevels) {
		t.Errorf("levels overflowed: %d", w.levels())
	}
}

func TestBannerOnlyOnceGrown(t *testing.T) {
	w, _ := newWelcome()
	if strings.Contains(w.View(100, 30), Tagline) {
		t.Fatal("tagline shown before the tree is grown")
	}
	advance(w, framesPerLevel*(len(treeLevels)-1))
	if !strings.Contains(w.View(100, 30), Tagline) {
		t.Fatal("tagline missing once the tree is grown")
	}
}

func TestKeySwapsToNextScreenOnce(t *testing.T) {
	w, built := newWelcome()
	advance(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("key should move on even mid-animation")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen == nil {
		t.Fatalf("expected ReplaceScreenMsg with a screen, got %#v", cmd())
	}

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'b'}); cmd != nil {
		t.Error("second key should do nothing")
	}
	if *built != 1 {
		t.Errorf("next screen built %d times, want 1", *built)
	}
}

func TestNoAutoTransition(t *testing.T) {
	w, built := newWelcome()
	advance(w, 100)
	if *built != 0 {
		t.Errorf("moved on without a key press")
	}
}

func TestFramesStopAfterTransition(t *testing.T) {
	w, _ := newWelcome()
	w.Update(tea.KeyPressMsg{Code: 'x'})
	if _, cmd := w.Update(frameMsg{}); cmd != nil {
		t.Error("animation kept ticking after moving on")
	}
}

func TestCompactBanner(t *testing.T) {
	if !strings.Contains(RenderBanner(BannerWidth-1), bannerCompact) {
		t.Error("narrow terminals should get the compact banner")
	}
}
