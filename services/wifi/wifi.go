package wifi

import (
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Network is one visible wifi network.
type Network struct {
	Ssid     string `json:"ssid"`
	Signal   int    `json:"signal"`
	Security string `json:"security"`
	Active   bool   `json:"active"`
}

// runner abstracts command execution so tests can fake nmcli.
type runner func(args ...string) (string, error)

func nmcli(args ...string) (string, error) {
	out, err := exec.Command("nmcli", args...).CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "nmcli %s: %s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// parseScan parses `nmcli -t -f ACTIVE,SSID,SIGNAL,SECURITY dev wifi list`
// terse output. Duplicate ssids keep the strongest signal.
func parseScan(output string) []Network {
	seen := map[string]Network{}
	for _, line := range strings.Split(output, "\n") {
		// terse format is colon separated with \: escapes
		parts := splitTerse(line)
		if len(parts) < 4 || parts[1] == "" {
			continue
		}
		signal, _ := strconv.Atoi(parts[2])
		network := Network{
			Ssid:     parts[1],
			Signal:   signal,
			Security: parts[3],
			Active:   parts[0] == "yes",
		}
		// the active entry wins regardless of signal, then strongest
		if prev, ok := seen[network.Ssid]; ok && !network.Active && (prev.Active || prev.Signal >= network.Signal) {
			continue
		}
		seen[network.Ssid] = network
	}

	networks := make([]Network, 0, len(seen))
	for _, network := range seen {
		networks = append(networks, network)
	}
	sort.Slice(networks, func(i, j int) bool {
		if networks[i].Active != networks[j].Active {
			return networks[i].Active
		}
		return networks[i].Signal > networks[j].Signal
	})
	return networks
}

// splitTerse splits nmcli terse output on unescaped colons.
func splitTerse(line string) []string {
	var parts []string
	var field strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			field.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			parts = append(parts, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	parts = append(parts, field.String())
	return parts
}

// Scan lists visible networks on the configured interface.
func scan(run runner, iface string) ([]Network, error) {
	args := []string{"-t", "-f", "ACTIVE,SSID,SIGNAL,SECURITY", "dev", "wifi", "list"}
	if iface != "" {
		args = append(args, "ifname", iface)
	}
	output, err := run(args...)
	if err != nil {
		return nil, err
	}
	return parseScan(output), nil
}

// Connect joins a network, creating or reusing an nmcli connection.
func connect(run runner, iface, ssid, password string) error {
	args := []string{"dev", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if iface != "" {
		args = append(args, "ifname", iface)
	}
	output, err := run(args...)
	if err != nil {
		return err
	}
	if strings.Contains(output, "Error") {
		return fmt.Errorf("connect failed: %s", strings.TrimSpace(output))
	}
	return nil
}
