package main

import "sort"

// Sender is the transport handle held per player. Send reports false when
// the player's outbound buffer is full or closed; broadcast loops log the
// failure and keep going.
type Sender interface {
	Send(msg any) bool
}

type player struct {
	name   string
	handle Sender
	score  int
	joined int // registration sequence, breaks scoreboard ties
}

// Roster tracks connected players and their scores. It is owned by the game
// loop and never locked; all access is serialized there.
type Roster struct {
	players map[string]*player
	nextSeq int
}

func NewRoster() *Roster {
	return &Roster{players: make(map[string]*player)}
}

// Add registers a player. Duplicate names are a caller-visible rejection.
func (r *Roster) Add(name string, handle Sender) error {
	if _, ok := r.players[name]; ok {
		return ErrNameTaken
	}
	r.players[name] = &player{name: name, handle: handle, joined: r.nextSeq}
	r.nextSeq++
	return nil
}

// Remove drops a player. Removing an absent name is a no-op; disconnect
// races are expected.
func (r *Roster) Remove(name string) {
	delete(r.players, name)
}

func (r *Roster) HandleOf(name string) (Sender, bool) {
	p, ok := r.players[name]
	if !ok {
		return nil, false
	}
	return p.handle, true
}

// NameOf reverse-maps a transport handle to its player name.
func (r *Roster) NameOf(handle Sender) (string, bool) {
	for _, p := range r.players {
		if p.handle == handle {
			return p.name, true
		}
	}
	return "", false
}

func (r *Roster) Count() int {
	return len(r.players)
}

// Names returns player names in registration order.
func (r *Roster) Names() []string {
	ordered := r.byJoinOrder()
	names := make([]string, len(ordered))
	for i, p := range ordered {
		names[i] = p.name
	}
	return names
}

func (r *Roster) AddPoints(name string, delta int) {
	if p, ok := r.players[name]; ok {
		p.score += delta
	}
}

// Scores returns a snapshot of every player's score.
func (r *Roster) Scores() map[string]int {
	scores := make(map[string]int, len(r.players))
	for name, p := range r.players {
		scores[name] = p.score
	}
	return scores
}

// RankedScores sorts by score descending; ties keep registration order so
// the leaderboard is reproducible.
func (r *Roster) RankedScores() []ScoreEntry {
	ordered := r.byJoinOrder()
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	entries := make([]ScoreEntry, len(ordered))
	for i, p := range ordered {
		entries[i] = ScoreEntry{Name: p.name, Score: p.score}
	}
	return entries
}

func (r *Roster) ResetScores() {
	for _, p := range r.players {
		p.score = 0
	}
}

// TopPlayer returns the current leader, or false when the roster is empty.
func (r *Roster) TopPlayer() (string, bool) {
	ranked := r.RankedScores()
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Name, true
}

func (r *Roster) byJoinOrder() []*player {
	ordered := make([]*player, 0, len(r.players))
	for _, p := range r.players {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].joined < ordered[j].joined
	})
	return ordered
}
