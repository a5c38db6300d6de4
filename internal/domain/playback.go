package domain

import "fmt"

// PlaybackEvent is one of the three transitions a member can request.
type PlaybackEvent string

const (
	EventPlay  PlaybackEvent = "play"
	EventPause PlaybackEvent = "pause"
	EventSeek  PlaybackEvent = "seek"
)

func (e PlaybackEvent) Valid() bool {
	switch e {
	case EventPlay, EventPause, EventSeek:
		return true
	}
	return false
}

// PlaybackState is the authoritative room position. The zero value is the
// initial state: paused at 0.
type PlaybackState struct {
	Position float64 `json:"position"`
	Playing  bool    `json:"playing"`
}

// Apply returns the state after ev at position pos. The event's position is
// taken as-is: last write wins.
func (s PlaybackState) Apply(ev PlaybackEvent, pos float64) (PlaybackState, error) {
	switch ev {
	case EventPlay:
		return PlaybackState{Position: pos, Playing: true}, nil
	case EventPause:
		return PlaybackState{Position: pos, Playing: false}, nil
	case EventSeek:
		return PlaybackState{Position: pos, Playing: s.Playing}, nil
	}
	return s, fmt.Errorf("playback: unknown event %q", ev)
}
