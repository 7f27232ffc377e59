package routines

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oodog/binghome/util"
)

// Timer is a one-shot countdown set from the dashboard or by voice
// ("set a timer for 10 minutes").
type Timer struct {
	Id      int       `json:"id"`
	Message string    `json:"message"`
	Expires time.Time `json:"expires"`
}

// Timers holds the active countdowns.
type Timers struct {
	mutex   sync.Mutex
	nextId  int
	pending map[int]Timer
}

func NewTimers() *Timers {
	return &Timers{pending: map[int]Timer{}}
}

// Add sets a timer, returning it with its id assigned.
func (self *Timers) Add(duration time.Duration, message string) Timer {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.nextId++
	timer := Timer{
		Id:      self.nextId,
		Message: message,
		Expires: time.Now().Add(duration),
	}
	self.pending[timer.Id] = timer
	return timer
}

// Cancel removes a timer by id.
func (self *Timers) Cancel(id int) bool {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	if _, ok := self.pending[id]; !ok {
		return false
	}
	delete(self.pending, id)
	return true
}

// Expired pops every timer due at the given instant.
func (self *Timers) Expired(now time.Time) []Timer {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	var expired []Timer
	for id, timer := range self.pending {
		if !timer.Expires.After(now) {
			expired = append(expired, timer)
			delete(self.pending, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].Id < expired[j].Id })
	return expired
}

// Active lists pending timers, soonest first.
func (self *Timers) Active() []Timer {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	timers := make([]Timer, 0, len(self.pending))
	for _, timer := range self.pending {
		timers = append(timers, timer)
	}
	sort.Slice(timers, func(i, j int) bool { return timers[i].Expires.Before(timers[j].Expires) })
	return timers
}

func (self Timer) String() string {
	remaining := time.Until(self.Expires)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("#%d %s (%s left)", self.Id, self.Message, util.ShortDuration(remaining))
}
