// Service reporting host health: load, memory, uptime and cpu
// temperature. The dashboard shows these on the system page.
package sysmon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	linuxproc "github.com/c9s/goprocinfo/linux"

	"github.com/oodog/binghome/pubsub"
	"github.com/oodog/binghome/services"
	"github.com/oodog/binghome/util"
)

const interval = 30 * time.Second

const thermalPath = "/sys/class/thermal/thermal_zone0/temp"

// Info is one snapshot of host health.
type Info struct {
	Load1    float64 `json:"load_1m"`
	Load5    float64 `json:"load_5m"`
	MemTotal uint64  `json:"mem_total_kb"`
	MemFree  uint64  `json:"mem_available_kb"`
	Uptime   int64   `json:"uptime_seconds"`
	CpuTemp  float64 `json:"cpu_temp"`
}

// Service sysmon
type Service struct {
	thermal string
}

// ID of the service
func (self *Service) ID() string {
	return "sysmon"
}

func (self *Service) Init() error {
	self.thermal = thermalPath
	return nil
}

// readCpuTemp reads a sysfs thermal zone (millidegrees). Zero when the
// host has no thermal zone (common in containers).
func readCpuTemp(path string) float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return float64(milli) / 1000
}

func (self *Service) snapshot() (Info, error) {
	var info Info
	loadavg, err := linuxproc.ReadLoadAvg("/proc/loadavg")
	if err != nil {
		return info, err
	}
	meminfo, err := linuxproc.ReadMemInfo("/proc/meminfo")
	if err != nil {
		return info, err
	}
	uptime, err := linuxproc.ReadUptime("/proc/uptime")
	if err != nil {
		return info, err
	}

	info.Load1 = loadavg.Last1Min
	info.Load5 = loadavg.Last5Min
	info.MemTotal = meminfo.MemTotal
	info.MemFree = meminfo.MemAvailable
	info.Uptime = int64(uptime.Total)
	info.CpuTemp = readCpuTemp(self.thermal)
	return info, nil
}

func (self *Service) querySystem(q services.Question) services.Answer {
	info, err := self.snapshot()
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("Error reading system info: %s", err)}
	}
	text := fmt.Sprintf("load %.2f, memory %d/%d MB free, up %s, cpu %.1f°C",
		info.Load1,
		info.MemFree/1024, info.MemTotal/1024,
		util.ShortDuration(time.Duration(info.Uptime)*time.Second),
		info.CpuTemp)
	return services.Answer{Text: text, Json: info}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"system": self.querySystem,
		"help":   services.StaticHandler("system: host load, memory and temperature\n"),
	}
}

// Run the service
func (self *Service) Run() error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		info, err := self.snapshot()
		if err != nil {
			continue
		}
		fields := pubsub.Fields{
			"source":   "sysmon",
			"device":   "sysmon.host",
			"load_1m":  info.Load1,
			"mem_free": info.MemFree,
			"uptime":   info.Uptime,
			"cpu_temp": info.CpuTemp,
		}
		ev := pubsub.NewEvent("sysmon", fields)
		ev.SetRetained(true)
		services.Publisher.Emit(ev)
	}
	return nil
}
