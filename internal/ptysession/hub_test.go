package ptysession

import "testing"

func TestHubPublishFanOut(t *testing.T) {
	hub := NewHub(false)
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Publish(Update{Diff: &Diff{}})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case <-sub.Updates:
		default:
			t.Fatal("expected both subscribers to receive the update")
		}
	}
}

func TestHubLagSignalsOnOverflow(t *testing.T) {
	hub := NewHub(false)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	for i := 0; i < hubBacklog+10; i++ {
		hub.Publish(Update{Diff: &Diff{}})
	}

	select {
	case <-sub.Lagged:
	default:
		t.Fatal("expected the subscriber to be marked lagged after overflow")
	}
}

func TestHubPublishRawRespectsDebugFlag(t *testing.T) {
	hub := NewHub(false)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	hub.PublishRaw([]byte("hi"))
	select {
	case <-sub.Raw:
		t.Fatal("raw output should not be forwarded when debug output is disabled")
	default:
	}
}

func TestHubCloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub(false)
	sub := hub.Subscribe()
	hub.Close()

	if _, ok := <-sub.Updates; ok {
		t.Fatal("expected Updates to be closed")
	}
}
