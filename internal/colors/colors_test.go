package colors

import "testing"

func withColor(t *testing.T, enabled bool) {
	prev := IsColorEnabled()
	SetColorEnabled(enabled)
	t.Cleanup(func() { SetColorEnabled(prev) })
}

func TestDisabledIsPlain(t *testing.T) {
	withColor(t, false)

	if got := Red("x"); got != "x" {
		t.Errorf("Red = %q", got)
	}
	if got := Decorations("main", []string{"main", "topic"}); got != "(HEAD -> main, topic)" {
		t.Errorf("Decorations = %q", got)
	}
	if got := Decorations("", []string{"topic"}); got != "(topic)" {
		t.Errorf("Decorations = %q", got)
	}
	if got := Decorations("", nil); got != "" {
		t.Errorf("Decorations = %q", got)
	}
}

func TestEnabledWrapsText(t *testing.T) {
	withColor(t, true)

	if got := Green("ok"); got != BrightGreen+"ok"+ColorReset {
		t.Errorf("Green = %q", got)
	}
	if got := CommitID("abc"); got != ColorBold+BrightYellow+"abc"+ColorReset {
		t.Errorf("CommitID = %q", got)
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")
	if shouldUseColor(0) {
		t.Error("NO_COLOR must win")
	}
}

func TestForceColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	if !shouldUseColor(^uintptr(0)) {
		t.Error("FORCE_COLOR must enable color")
	}
}
