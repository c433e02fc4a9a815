package state

import (
	"math"
	"time"
)

// PlaybackState steps through the commit sequence. Position is measured in
// commits: 2.5 means two routes flown and the third half way.
type PlaybackState struct {
	Position   float64 // Current playback position in commits
	MaxSteps   float64 // Number of committed routes
	Speed      float64 // Commits per second
	Playing    bool    // Whether playback is active
	lastUpdate time.Time
}

// NewPlaybackState creates a new playback state.
func NewPlaybackState(steps int) *PlaybackState {
	return &PlaybackState{
		MaxSteps:   float64(steps),
		Speed:      1.0,
		lastUpdate: time.Now(),
	}
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		// Reset to start if at end
		if p.Position >= p.MaxSteps {
			p.Position = 0
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset resets to beginning.
func (p *PlaybackState) Reset() {
	p.Position = 0
	p.Playing = false
}

// Advance advances playback by elapsed time since last update.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}

	now := time.Now()
	p.advanceBy(now.Sub(p.lastUpdate))
	p.lastUpdate = now
}

func (p *PlaybackState) advanceBy(elapsed time.Duration) {
	p.Position += elapsed.Seconds() * p.Speed
	if p.Position >= p.MaxSteps {
		p.Position = p.MaxSteps
		p.Playing = false
	}
}

// SetPosition sets the playback position, clamped to the commit range.
func (p *PlaybackState) SetPosition(pos float64) {
	p.Position = max(0, min(p.MaxSteps, pos))
}

// StepForward jumps to the end of the current route.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetPosition(math.Floor(p.Position) + 1)
}

// StepBack jumps to the start of the current route, or the previous one
// when already at a boundary.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetPosition(math.Ceil(p.Position) - 1)
}

// SetSpeed sets the playback speed multiplier.
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = max(0.1, min(10, speed))
}

// Step returns the number of fully flown routes.
func (p *PlaybackState) Step() int {
	return int(math.Floor(p.Position))
}

// Progress returns current progress as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.MaxSteps <= 0 {
		return 0
	}
	return p.Position / p.MaxSteps
}
