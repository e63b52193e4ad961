package event

import (
	"testing"
	"time"
)

func TestWorkerDeliversRiskChanged(t *testing.T) {
	received := make(chan *RiskChanged, 1)
	Subscribe(TypeRiskChanged, func(e Queueable) {
		rc, ok := e.(*RiskChanged)
		if !ok {
			return
		}
		rc.Process()
		select {
		case received <- rc:
		default:
		}
	})

	cancel := RunWorker()
	defer cancel()

	Bus.NQ(NewRiskChanged("u1", "m1", 80, "ban"))

	select {
	case rc := <-received:
		if rc.UserID != "u1" || rc.RiskScore != 80 || rc.SuggestedAction != "ban" {
			t.Fatalf("got %+v, want u1/80/ban", rc)
		}
		if rc.EventID == "" {
			t.Fatal("event id should be set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

type testEvent struct {
	*Base
}

func TestWorkerSurvivesPanickingSubscriber(t *testing.T) {
	const (
		angryType = "angry_subscriber"
		calmType  = "calm_subscriber"
	)
	Subscribe(angryType, func(Queueable) {
		panic("subscriber failure")
	})
	delivered := make(chan struct{}, 1)
	Subscribe(calmType, func(e Queueable) {
		e.Process()
		select {
		case delivered <- struct{}{}:
		default:
		}
	})

	cancel := RunWorker()
	defer cancel()

	Bus.NQ(&testEvent{CreateBase(angryType, time.Now().Add(time.Minute))})
	Bus.NQ(&testEvent{CreateBase(calmType, time.Now().Add(time.Minute))})

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not recover after subscriber panic")
	}
}

func TestExpiredEventIsSkipped(t *testing.T) {
	base := CreateBase("test", time.Now().Add(-time.Minute))
	if !base.Expired() {
		t.Fatal("event in the past should be expired")
	}
	if CreateBase("test", time.Now().Add(time.Minute)).Expired() {
		t.Fatal("future event should not be expired")
	}
}
