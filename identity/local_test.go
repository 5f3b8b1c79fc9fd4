package identity

import (
	"sync"
	"testing"
)

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	p := NewLocalProvider(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.publish(AuthEvent{Type: EventSignedOut, UserID: 1})
			}
		}()
	}
	p.Close()
	wg.Wait()

	// Close is idempotent.
	p.Close()
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	p := NewLocalProvider(nil, nil)
	defer p.Close()

	for i := 0; i < 100; i++ {
		p.publish(AuthEvent{Type: EventTokenRefreshed, UserID: 1})
	}

	drained := 0
	for {
		select {
		case <-p.Events():
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > cap(p.events) {
		t.Errorf("expected between 1 and %d buffered events, got %d", cap(p.events), drained)
	}
}
