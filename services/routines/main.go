// Service running scheduled routines and countdown timers.
//
// Routines come from configuration ("22:30 every day: turn off the
// lights") and are checked every 30 seconds. Timers are set at runtime
// over query rpc and raise an alert when they expire.
package routines

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
	"github.com/oodog/binghome/util"
)

const checkInterval = 30 * time.Second

// Service routines
type Service struct {
	routines []*Routine
	timers   *Timers
}

// ID of the service
func (self *Service) ID() string {
	return "routines"
}

func (self *Service) Init() error {
	self.timers = NewTimers()
	return self.reload()
}

func (self *Service) reload() error {
	var routines []*Routine
	for _, conf := range services.Config().Routines {
		routine, err := NewRoutine(conf)
		if err != nil {
			return err
		}
		routines = append(routines, routine)
	}
	self.routines = routines
	return nil
}

func (self *Service) check(now time.Time) {
	for _, routine := range self.routines {
		if !routine.ShouldRun(now) {
			continue
		}
		routine.markRun(now)
		log.Println("Running routine:", routine.conf.Name)
		ev := pubsub.NewCommand(routine.conf.Device, routine.conf.Command)
		ev.SetField("source", "routines")
		services.Publisher.Emit(ev)
	}

	for _, timer := range self.timers.Expired(now) {
		message := timer.Message
		if message == "" {
			message = "Timer finished"
		}
		fields := pubsub.Fields{
			"source":  "routines",
			"message": message,
		}
		services.Publisher.Emit(pubsub.NewEvent("alert", fields))
	}
}

func (self *Service) queryTimer(q services.Question) string {
	parts := strings.SplitN(q.Args, " ", 2)
	duration, err := time.ParseDuration(parts[0])
	if err != nil || duration <= 0 {
		return "Usage: timer 10m [message]"
	}
	message := ""
	if len(parts) > 1 {
		message = parts[1]
	}
	timer := self.timers.Add(duration, message)
	return fmt.Sprintf("Timer #%d set for %s", timer.Id, util.FriendlyDuration(duration))
}

func (self *Service) queryTimers(q services.Question) services.Answer {
	timers := self.timers.Active()
	if len(timers) == 0 {
		return services.Answer{Text: "No timers running", Json: []Timer{}}
	}
	lines := make([]string, len(timers))
	for i, timer := range timers {
		lines[i] = timer.String()
	}
	return services.Answer{Text: strings.Join(lines, "\n"), Json: timers}
}

func (self *Service) queryCancel(q services.Question) string {
	var id int
	if _, err := fmt.Sscanf(q.Args, "%d", &id); err != nil {
		return "Usage: cancel <timer id>"
	}
	if !self.timers.Cancel(id) {
		return fmt.Sprintf("No timer #%d", id)
	}
	return fmt.Sprintf("Cancelled timer #%d", id)
}

func (self *Service) queryRoutines(q services.Question) string {
	if len(self.routines) == 0 {
		return "No routines configured"
	}
	lines := make([]string, len(self.routines))
	for i, routine := range self.routines {
		lines[i] = routine.String()
	}
	return strings.Join(lines, "\n")
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"timer":    services.TextHandler(self.queryTimer),
		"timers":   self.queryTimers,
		"cancel":   services.TextHandler(self.queryCancel),
		"routines": services.TextHandler(self.queryRoutines),
		"help": services.StaticHandler("" +
			"timer 10m [message]: set a countdown timer\n" +
			"timers: list running timers\n" +
			"cancel id: cancel a timer\n" +
			"routines: list configured routines\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	// tick on the half minute, so routines fire promptly on their minute
	ticker := util.NewScheduler(0, checkInterval)
	events := services.Subscriber.Subscribe(pubsub.Exact("config"))
	for {
		select {
		case now := <-ticker.C:
			self.check(now)
		case <-events:
			if err := self.reload(); err != nil {
				log.Println("Error reloading routines:", err)
			}
		}
	}
}
