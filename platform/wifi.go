/*
NAME
  wifi.go - Wi-Fi radio control via wpa_cli.

LICENSE
  netsender is Copyright (C) 2017-2026 the Australian Ocean Lab (AusOcean).

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License in
  gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Wi-Fi control commands, invoked by shelling out the same way
// platform/reset.go shells out to "syncreboot" for a restart.
const (
	wpaCLI    = "wpa_cli"
	ipCmd     = "ip"
	netIfName = "wlan0"
)

// Radio drives the Pi's Wi-Fi interface through wpa_cli and ip,
// implementing netsender.Radio.
type Radio struct {
	iface string
}

// NewRadio returns a Radio controlling iface (netIfName if empty).
func NewRadio(iface string) *Radio {
	if iface == "" {
		iface = netIfName
	}
	return &Radio{iface: iface}
}

// PowerOn brings the Wi-Fi interface up.
func (r *Radio) PowerOn() error {
	out, err := exec.Command(ipCmd, "link", "set", r.iface, "up").CombinedOutput()
	if err != nil {
		return fmt.Errorf("platform: could not power on %s: %w: %s", r.iface, err, out)
	}
	return nil
}

// PowerOff brings the Wi-Fi interface down.
func (r *Radio) PowerOff() error {
	out, err := exec.Command(ipCmd, "link", "set", r.iface, "down").CombinedOutput()
	if err != nil {
		return fmt.Errorf("platform: could not power off %s: %w: %s", r.iface, err, out)
	}
	return nil
}

// Connect checks that the first field of credentialsCSV ("ssid,key")
// is non-empty and then runs wpa_cli's reconfigure, so that a network
// already present in wpa_supplicant.conf is (re)selected. The SSID and
// key are not passed to wpa_supplicant.
func (r *Radio) Connect(credentialsCSV string) error {
	fields := strings.SplitN(credentialsCSV, ",", 2)
	if len(fields) == 0 || fields[0] == "" {
		return fmt.Errorf("platform: empty SSID")
	}
	out, err := exec.Command(wpaCLI, "-i", r.iface, "reconfigure").CombinedOutput()
	if err != nil {
		return fmt.Errorf("platform: wpa_cli reconfigure failed: %w: %s", err, out)
	}
	return nil
}

// MAC returns the interface's hardware address, read the same way the
// kernel exposes it under /sys/class/net.
func (r *Radio) MAC() (string, error) {
	buf, err := os.ReadFile("/sys/class/net/" + r.iface + "/address")
	if err != nil {
		return "", fmt.Errorf("platform: could not read MAC for %s: %w", r.iface, err)
	}
	return strings.TrimSpace(string(buf)), nil
}
