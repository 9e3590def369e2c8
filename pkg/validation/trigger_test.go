package validation

import "testing"

func TestTrigger_Transitions(t *testing.T) {
	trigger := NewTrigger()
	key := "project::title"

	steps := []struct {
		event  string
		action Action
		phase  Phase
	}{
		{event: "input", action: ActionNone, phase: Untouched},
		{event: "blur", action: ActionValidateNow, phase: TouchedImmediate},
		{event: "input", action: ActionSchedule, phase: TouchedDebounced},
		{event: "input", action: ActionSchedule, phase: TouchedDebounced},
		{event: "blur", action: ActionValidateNow, phase: TouchedDebounced},
	}

	for i, step := range steps {
		var got Action
		if step.event == "blur" {
			got = trigger.Blur(key)
		} else {
			got = trigger.Input(key)
		}
		if got != step.action {
			t.Fatalf("step %d (%s): want action %d, got %d", i, step.event, step.action, got)
		}
		if phase := trigger.Phase(key); phase != step.phase {
			t.Fatalf("step %d (%s): want phase %s, got %s", i, step.event, step.phase, phase)
		}
	}
}

func TestTrigger_ResetScopedByPrefix(t *testing.T) {
	trigger := NewTrigger()
	trigger.Blur("project::title")
	trigger.Blur("project-archive::title")

	if n := trigger.Reset("project::"); n != 1 {
		t.Fatalf("expected one reset, got %d", n)
	}
	if trigger.Phase("project::title") != Untouched {
		t.Fatalf("project title should be untouched")
	}
	if trigger.Phase("project-archive::title") != TouchedImmediate {
		t.Fatalf("sibling dialog must keep its state")
	}
}
