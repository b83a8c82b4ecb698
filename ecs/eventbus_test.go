package ecs

import "testing"

type ping struct {
	N int
}

type pong struct {
	N int
}

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus()

	var got []int
	Subscribe(bus, func(ev ping) {
		got = append(got, ev.N)
	})

	Publish(bus, ping{N: 1})
	Publish(bus, ping{N: 2})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestEventBus_TypeIsolation(t *testing.T) {
	bus := NewEventBus()

	pings, pongs := 0, 0
	Subscribe(bus, func(ping) { pings++ })
	Subscribe(bus, func(pong) { pongs++ })

	Publish(bus, ping{})
	Publish(bus, ping{})
	Publish(bus, pong{})

	if pings != 2 || pongs != 1 {
		t.Fatalf("pings=%d pongs=%d, want 2 and 1", pings, pongs)
	}
}

func TestEventBus_HandlerOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	Subscribe(bus, func(ping) { order = append(order, "first") })
	Subscribe(bus, func(ping) { order = append(order, "second") })

	Publish(bus, ping{})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
}

func TestEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Must not panic or allocate handler state.
	Publish(bus, ping{N: 42})
}
