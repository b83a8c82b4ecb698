package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(PhaseMaterialize, KindClassNotFound).
		Path("player", "Player").
		Detail("no such attribute").
		Build()

	msg := err.Error()
	if !strings.Contains(msg, "[materialize]") {
		t.Errorf("missing phase in %q", msg)
	}
	if !strings.Contains(msg, "class_not_found") {
		t.Errorf("missing kind in %q", msg)
	}
	if !strings.Contains(msg, "at player.Player") {
		t.Errorf("missing path in %q", msg)
	}
	if !strings.Contains(msg, "no such attribute") {
		t.Errorf("missing detail in %q", msg)
	}
}

func TestErrorCauseChain(t *testing.T) {
	cause := stderrors.New("boom")
	err := Script(PhaseUpdate, cause, "update raised")

	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("cause not rendered: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestErrorIs(t *testing.T) {
	err := ClassNotFound("player", "Player")

	if !stderrors.Is(err, &Error{Phase: PhaseMaterialize, Kind: KindClassNotFound}) {
		t.Error("expected match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseUpdate, Kind: KindClassNotFound}) {
		t.Error("unexpected match across phases")
	}
	if stderrors.Is(err, &Error{Phase: PhaseMaterialize, Kind: KindModuleNotFound}) {
		t.Error("unexpected match across kinds")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		want Kind
	}{
		{ModuleNotFound("m", nil), KindModuleNotFound},
		{ClassNotFound("m", "C"), KindClassNotFound},
		{FactoryMissing("m", "C", "_from_entity"), KindFactoryMissing},
		{NotConfigured(PhaseEmit, "event bus"), KindNotConfigured},
		{NotFound(PhaseDispatch, "event type", "Collision"), KindNotFound},
		{TypeMismatch(PhaseMaterialize, []string{"m"}, "table", "nil"), KindTypeMismatch},
		{InvalidInput(PhaseConfigure, "empty path"), KindInvalidInput},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.want {
			t.Errorf("got kind %s, want %s", tt.err.Kind, tt.want)
		}
		if tt.err.Error() == "" {
			t.Error("empty message")
		}
	}
}
