package rules

import "strconv"

// Watcher observes game events and tracks a condition or tally.
type Watcher interface {
	// Watch is called for every published event; implementations filter by type.
	Watch(event Event)

	// ConditionMet returns true once the watcher has seen a relevant event.
	ConditionMet() bool

	// GetKey returns a unique key for this watcher instance.
	GetKey() string
}

// BaseWatcher provides the bookkeeping shared by concrete watchers.
type BaseWatcher struct {
	condition bool
	key       string
}

// NewBaseWatcher creates a new base watcher.
func NewBaseWatcher() *BaseWatcher {
	return &BaseWatcher{}
}

// ConditionMet returns whether the condition has been met.
func (bw *BaseWatcher) ConditionMet() bool {
	return bw.condition
}

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// GetKey returns the unique key for this watcher.
func (bw *BaseWatcher) GetKey() string {
	return bw.key
}

// SetKey sets the unique key for this watcher.
func (bw *BaseWatcher) SetKey(key string) {
	bw.key = key
}

// WatcherRegistry manages the watchers attached to one game.
type WatcherRegistry struct {
	watchers map[string]Watcher
	order    []string
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher, replacing any watcher with the same key.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}
	key := watcher.GetKey()
	if key == "" {
		key = wr.generateKey()
		if setter, ok := watcher.(interface{ SetKey(string) }); ok {
			setter.SetKey(key)
		}
	}
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// NotifyWatchers passes event to every watcher; they filter internally.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	for _, key := range wr.order {
		wr.watchers[key].Watch(event)
	}
}

// Attach subscribes the registry to bus and returns the subscription handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.NotifyWatchers)
}

func (wr *WatcherRegistry) generateKey() string {
	const key = "Watcher"
	for n := 1; ; n++ {
		candidate := key
		if n > 1 {
			candidate = key + "_" + strconv.Itoa(n)
		}
		if _, taken := wr.watchers[candidate]; !taken {
			return candidate
		}
	}
}
