package events

import "testing"

func TestOrNop(t *testing.T) {
	OrNop(nil).Observe(Event{Type: Progress})

	var got []Type
	o := ObserverFunc(func(e Event) { got = append(got, e.Type) })
	OrNop(o).Observe(Event{Type: Matched})
	if len(got) != 1 || got[0] != Matched {
		t.Fatalf("got %v", got)
	}
}

func TestMultiSkipsNilAndKeepsOrder(t *testing.T) {
	var order []string
	first := ObserverFunc(func(Event) { order = append(order, "first") })
	second := ObserverFunc(func(Event) { order = append(order, "second") })

	Multi(nil, first, nil, second).Observe(Event{Type: PhaseStarted})
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
}
