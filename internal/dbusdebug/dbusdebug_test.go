package dbusdebug

import (
	"testing"

	"github.com/squeekboard/squeekboard/internal/visibility"
)

func TestEventForEnabled(t *testing.T) {
	enableEv := eventForEnabled(true)
	if enableEv.Debug != visibility.DebugEnable {
		t.Errorf("got %+v, want DebugEnable", enableEv)
	}

	disableEv := eventForEnabled(false)
	if disableEv.Debug != visibility.DebugDisable {
		t.Errorf("got %+v, want DebugDisable", disableEv)
	}
}

type recordingSender struct {
	events []visibility.Event
}

func (r *recordingSender) Send(ev visibility.Event) {
	r.events = append(r.events, ev)
}

func TestEventSenderInterfaceSatisfiedByRecordingSender(t *testing.T) {
	var s EventSender = &recordingSender{}
	s.Send(visibility.NewDebugEvent(visibility.DebugEnable))
}
