package routines

import (
	"fmt"
	"strings"
	"time"

	"github.com/oodog/binghome/config"
)

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Routine is a scheduled device command, checked against the clock.
type Routine struct {
	conf    config.RoutineConf
	lastRun time.Time
}

func NewRoutine(conf config.RoutineConf) (*Routine, error) {
	if _, err := time.Parse("15:04", conf.Time); err != nil {
		return nil, fmt.Errorf("routine %q: bad time %q", conf.Name, conf.Time)
	}
	for _, day := range conf.Days {
		if _, ok := dayNames[strings.ToLower(day)]; !ok {
			return nil, fmt.Errorf("routine %q: bad day %q", conf.Name, day)
		}
	}
	return &Routine{conf: conf}, nil
}

// ShouldRun reports whether the routine is due at the given instant.
// A routine fires at most once per day, on the minute it names.
func (self *Routine) ShouldRun(now time.Time) bool {
	if now.Format("15:04") != self.conf.Time {
		return false
	}
	if !self.matchesDay(now.Weekday()) {
		return false
	}
	// already fired this minute (the check runs more often than 1/min)
	if self.lastRun.Format("2006-01-02 15:04") == now.Format("2006-01-02 15:04") {
		return false
	}
	return true
}

func (self *Routine) matchesDay(day time.Weekday) bool {
	if len(self.conf.Days) == 0 {
		return true
	}
	for _, name := range self.conf.Days {
		if dayNames[strings.ToLower(name)] == day {
			return true
		}
	}
	return false
}

func (self *Routine) markRun(now time.Time) {
	self.lastRun = now
}

func (self *Routine) String() string {
	days := "every day"
	if len(self.conf.Days) > 0 {
		days = strings.Join(self.conf.Days, ",")
	}
	return fmt.Sprintf("%s at %s (%s): %s %s", self.conf.Name, self.conf.Time, days, self.conf.Device, self.conf.Command)
}
