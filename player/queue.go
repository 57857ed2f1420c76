package player

import (
	"sync"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
)

// Requester is stored in a track's user data so the queue can show who
// asked for it.
type Requester struct {
	ID   snowflake.ID `json:"requesterId"`
	Name string       `json:"requesterName"`
}

// WithRequester returns track with r attached as its user data.
func WithRequester(track lavalink.Track, r Requester) (lavalink.Track, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return track, err
	}
	track.UserData = data
	return track, nil
}

// RequesterOf reads back the requester attached with WithRequester.
func RequesterOf(track lavalink.Track) (Requester, bool) {
	var r Requester
	if len(track.UserData) == 0 {
		return r, false
	}
	if err := json.Unmarshal(track.UserData, &r); err != nil || r.ID == 0 {
		return r, false
	}
	return r, true
}

// Queue holds the tracks waiting to be played in one guild.
type Queue struct {
	mu     sync.Mutex
	tracks []lavalink.Track
}

// Push appends tracks and returns the 1-based position of the first one.
func (q *Queue) Push(tracks ...lavalink.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	position := len(q.tracks) + 1
	q.tracks = append(q.tracks, tracks...)
	return position
}

// Next removes and returns the track at the front of the queue.
func (q *Queue) Next() (lavalink.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return lavalink.Track{}, false
	}
	next := q.tracks[0]
	q.tracks[0] = lavalink.Track{}
	q.tracks = q.tracks[1:]
	return next, true
}

// Tracks returns a copy of the queued tracks.
func (q *Queue) Tracks() []lavalink.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]lavalink.Track(nil), q.tracks...)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Duration is the combined length of every queued track.
func (q *Queue) Duration() lavalink.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	var total lavalink.Duration
	for _, t := range q.tracks {
		total += t.Info.Length
	}
	return total
}

func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = nil
}

// Queues keeps one Queue per guild.
type Queues struct {
	mu     sync.Mutex
	queues map[snowflake.ID]*Queue
	// locks outlive Delete so a guild never has two of them.
	locks map[snowflake.ID]*sync.Mutex
}

func NewQueues() *Queues {
	return &Queues{
		queues: make(map[snowflake.ID]*Queue),
		locks:  make(map[snowflake.ID]*sync.Mutex),
	}
}

// Lock serializes playback decisions for guildID, such as whether a track
// starts now or is queued. Call the returned func to unlock.
func (q *Queues) Lock(guildID snowflake.ID) func() {
	q.mu.Lock()
	lock, ok := q.locks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		q.locks[guildID] = lock
	}
	q.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get returns the queue for guildID, creating it on first use.
func (q *Queues) Get(guildID snowflake.ID) *Queue {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue, ok := q.queues[guildID]
	if !ok {
		queue = &Queue{}
		q.queues[guildID] = queue
	}
	return queue
}

func (q *Queues) Delete(guildID snowflake.ID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queues, guildID)
}
