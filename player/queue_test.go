package player

import (
	"sync"
	"testing"

	"github.com/disgoorg/disgolink/v3/lavalink"
)

func track(title string, length lavalink.Duration) lavalink.Track {
	return lavalink.Track{Info: lavalink.TrackInfo{Title: title, Length: length}}
}

func TestQueueOrder(t *testing.T) {
	var q Queue
	if _, ok := q.Next(); ok {
		t.Fatalf("empty queue returned a track")
	}

	if pos := q.Push(track("a", 1000)); pos != 1 {
		t.Fatalf("expected position 1, got %d", pos)
	}
	if pos := q.Push(track("b", 2000), track("c", 3000)); pos != 2 {
		t.Fatalf("expected position 2, got %d", pos)
	}
	if q.Len() != 3 || q.Duration() != 6000 {
		t.Fatalf("unexpected len %d duration %d", q.Len(), q.Duration())
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Next()
		if !ok || got.Info.Title != want {
			t.Fatalf("expected %s, got %q (ok=%v)", want, got.Info.Title, ok)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestQueueTracksIsACopy(t *testing.T) {
	var q Queue
	q.Push(track("a", 1), track("b", 1))
	tracks := q.Tracks()
	tracks[0].Info.Title = "changed"
	if got, _ := q.Next(); got.Info.Title != "a" {
		t.Fatalf("Tracks leaked internal state")
	}

	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("Clear left %d tracks", q.Len())
	}
}

func TestQueuesPerGuild(t *testing.T) {
	qs := NewQueues()
	qs.Get(1).Push(track("a", 1))
	if qs.Get(2).Len() != 0 {
		t.Fatalf("guild queues are shared")
	}
	if qs.Get(1) != qs.Get(1) {
		t.Fatalf("Get returned a fresh queue for a known guild")
	}
	qs.Delete(1)
	if qs.Get(1).Len() != 0 {
		t.Fatalf("Delete kept the old queue")
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(track("t", 1))
		}()
	}
	wg.Wait()
	if q.Len() != 50 {
		t.Fatalf("expected 50 tracks, got %d", q.Len())
	}
}

func TestRequester(t *testing.T) {
	if _, ok := RequesterOf(track("a", 1)); ok {
		t.Fatalf("track without user data has a requester")
	}

	tagged, err := WithRequester(track("a", 1), Requester{ID: 42, Name: "ann"})
	if err != nil {
		t.Fatalf("WithRequester: %v", err)
	}
	r, ok := RequesterOf(tagged)
	if !ok || r.ID != 42 || r.Name != "ann" {
		t.Fatalf("unexpected requester %+v (ok=%v)", r, ok)
	}
}

func TestQueuesLockSerializesStartOrQueue(t *testing.T) {
	queues := NewQueues()
	var (
		wg      sync.WaitGroup
		playing *lavalink.Track
		started int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := queues.Lock(1)
			defer unlock()

			tr := track("t", 1)
			if playing != nil {
				queues.Get(1).Push(tr)
				return
			}
			playing = &tr
			started++
		}()
	}
	wg.Wait()

	if started != 1 || queues.Get(1).Len() != 49 {
		t.Fatalf("expected one start and 49 queued, got %d and %d", started, queues.Get(1).Len())
	}
}

func TestQueuesLockPerGuild(t *testing.T) {
	queues := NewQueues()
	unlock := queues.Lock(1)
	queues.Delete(1)

	// a different guild is not blocked
	queues.Lock(2)()

	done := make(chan struct{})
	go func() {
		queues.Lock(1)()
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("guild lock must survive Delete")
	default:
	}
	unlock()
	<-done
}
