package watchers

import (
	"github.com/ttt3d/ttt3d-server-go/internal/game/rules"
)

// LinesScoredWatcher tracks how many lines each player has scored.
type LinesScoredWatcher struct {
	*rules.BaseWatcher
	lines map[string]int // playerID -> lines scored
}

// NewLinesScoredWatcher creates a new lines scored watcher.
func NewLinesScoredWatcher() *LinesScoredWatcher {
	w := &LinesScoredWatcher{
		BaseWatcher: rules.NewBaseWatcher(),
		lines:       make(map[string]int),
	}
	w.SetKey("LinesScoredWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *LinesScoredWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventLineScored || event.PlayerID == "" {
		return
	}
	w.lines[event.PlayerID]++
	w.SetCondition(true)
}

// GetCount returns the number of lines scored by a player.
func (w *LinesScoredWatcher) GetCount(playerID string) int {
	return w.lines[playerID]
}

// CapturesWatcher tracks empowered captures: how many each player made and
// how many pieces each player lost to them.
type CapturesWatcher struct {
	*rules.BaseWatcher
	made map[string]int // capturing playerID -> captures
	lost map[string]int // victim playerID -> pieces lost
}

// NewCapturesWatcher creates a new captures watcher.
func NewCapturesWatcher() *CapturesWatcher {
	w := &CapturesWatcher{
		BaseWatcher: rules.NewBaseWatcher(),
		made:        make(map[string]int),
		lost:        make(map[string]int),
	}
	w.SetKey("CapturesWatcher")
	return w
}

// Watch implements the Watcher interface. The victim's player ID is read
// from the event's TargetID.
func (w *CapturesWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPieceCaptured {
		return
	}
	if event.PlayerID != "" {
		w.made[event.PlayerID]++
	}
	if event.TargetID != "" {
		w.lost[event.TargetID]++
	}
	w.SetCondition(true)
}

// GetCapturesMade returns how many captures playerID has made.
func (w *CapturesWatcher) GetCapturesMade(playerID string) int {
	return w.made[playerID]
}

// GetPiecesLost returns how many of playerID's pieces were captured.
func (w *CapturesWatcher) GetPiecesLost(playerID string) int {
	return w.lost[playerID]
}

// EvictionsWatcher counts pieces removed by the piece cap.
type EvictionsWatcher struct {
	*rules.BaseWatcher
	evictions map[string]int
}

// NewEvictionsWatcher creates a new evictions watcher.
func NewEvictionsWatcher() *EvictionsWatcher {
	w := &EvictionsWatcher{
		BaseWatcher: rules.NewBaseWatcher(),
		evictions:   make(map[string]int),
	}
	w.SetKey("EvictionsWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *EvictionsWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPieceEvicted || event.PlayerID == "" {
		return
	}
	w.evictions[event.PlayerID]++
	w.SetCondition(true)
}

// GetCount returns the number of evictions for a player.
func (w *EvictionsWatcher) GetCount(playerID string) int {
	return w.evictions[playerID]
}
