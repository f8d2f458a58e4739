/*
NAME
 netsender-node - runs the NetSender control loop on a field-deployed node.

DESCRIPTION
 See Readme.md

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

 You should have received a copy of the GNU General Public License
 along with netsender in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

// netsender-node is a NetSender client assembling the core control loop
// with Raspberry-Pi-class platform collaborators, a DHT or DS18B20
// peripheral, and log rotation/upload.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/kidoman/embd/host/all"
	"github.com/charmbracelet/lipgloss"

	"github.com/ausocean/netsender/netsender"
	"github.com/ausocean/netsender/nodelog"
	"github.com/ausocean/netsender/peripherals/dallas"
	"github.com/ausocean/netsender/peripherals/dht"
	"github.com/ausocean/netsender/platform"
	"github.com/ausocean/netsender/remote"
)

const (
	progName       = "netsender-node"
	varDir         = "/var/lib/netsender"
	logDir         = "/var/log/netsender"
	configBlobSize = 336 // size of netsender's packed Config blob.
	modeNVFile     = "mode.conf"
	storeFile      = "config.bin"
	wifiIface      = "wlan0"
)

func main() {
	var (
		hardware    bool
		debug       bool
		status      bool
		sshDiagnose string
		sshUser     string
		sshPass     string
		peripheral  string
		host        string
	)
	flag.BoolVar(&hardware, "hardware", false, "Enable hardware peripherals")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&status, "status", false, "Print a one-shot status dashboard and exit")
	flag.StringVar(&sshDiagnose, "ssh-diagnose", "", "Open a diagnostic SSH shell to the node at this IP and exit")
	flag.StringVar(&sshUser, "ssh-user", "pi", "SSH username for --ssh-diagnose")
	flag.StringVar(&sshPass, "ssh-pass", "", "SSH password for --ssh-diagnose")
	flag.StringVar(&peripheral, "peripheral", "", "External sensor to service the X pin bank: \"dht\", \"dallas\", or \"\" for none")
	flag.StringVar(&host, "host", netsender.DefaultHost, "NetSender service host")
	flag.Parse()

	if sshDiagnose != "" {
		runSSHDiagnose(sshDiagnose, sshUser, sshPass)
		return
	}

	var logVerbosity int8 = netsender.InfoLevel
	if debug {
		logVerbosity = netsender.DebugLevel
	}

	if err := os.MkdirAll(varDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}
	nl := nodelog.New(logDir)
	log := platform.NewLogger(logVerbosity, io.MultiWriter(nl, os.Stderr), false)

	store, err := platform.NewFileStore(varDir+"/"+storeFile, configBlobSize)
	if err != nil {
		log.Log(netsender.ErrorLevel, "could not open store", "error", err.Error())
		os.Exit(1)
	}
	modeNV := platform.NewFileNV(varDir + "/" + modeNVFile)
	radio := platform.NewRadio(wifiIface)

	deps := netsender.Deps{
		Logger:   log,
		Clock:    osClock{},
		Store:    store,
		ModeNV:   modeNV,
		Sleeper:  platform.NewOSSleeper(),
		Resetter: platform.NewSyncReset(),
	}

	if hardware {
		gpio := platform.NewGPIO()
		deps.AnalogReader = gpio
		deps.AnalogWriter = gpio
		deps.DigitalReader = gpio
		deps.DigitalWriter = gpio
		switch peripheral {
		case "dht":
			deps.External = dht.New(4)
		case "dallas":
			deps.External = dallas.New()
		}
		log.Log(netsender.InfoLevel, "hardware peripherals enabled", "peripheral", peripheral)
	}

	online := netsender.NewOnlineHandler(host, radio)
	fs, err := platform.NewSDFileSystem(varDir + "/offline")
	if err != nil {
		log.Log(netsender.ErrorLevel, "could not open offline storage", "error", err.Error())
		os.Exit(1)
	}
	offline := netsender.NewOfflineHandler(fs)

	ctx, err := netsender.Init(deps, online, offline)
	if err != nil {
		log.Log(netsender.ErrorLevel, "init failed", "error", err.Error())
		os.Exit(1)
	}

	if status {
		printStatus(ctx, deps.AnalogReader)
		return
	}

	log.Log(netsender.InfoLevel, "netsender-node starting", "mode", ctx.Mode)
	for {
		ctx.Run()
		if err := nl.SendLogs(ctx); err != nil {
			log.Log(netsender.WarningLevel, "log upload failed", "error", err.Error())
		}
	}
}

// osClock implements netsender.Clock with the process's monotonic
// uptime, standing in for a hardware millis counter.
type osClock struct{}

var processStart = time.Now()

func (osClock) Millis() uint32 { return uint32(time.Since(processStart).Milliseconds()) }

// printStatus renders a one-shot dashboard of the node's current state.
func printStatus(ctx *netsender.Context, analog netsender.AnalogReader) {
	label := lipgloss.NewStyle().Bold(true).Width(10)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	alarmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	if ctx.Alarm.Alarmed() {
		alarmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	}

	battery := "n/a"
	if analog != nil {
		if v, err := analog.ReadAnalog(0); err == nil {
			battery = fmt.Sprintf("%d", v)
		}
	}

	rows := []string{
		label.Render("Mode") + value.Render(ctx.Mode),
		label.Render("Error") + value.Render(errOrNone(ctx.Error)),
		label.Render("Alarm") + alarmStyle.Render(fmt.Sprintf("%v (%d total)", ctx.Alarm.Alarmed(), ctx.Alarm.Alarms())),
		label.Render("VarSum") + value.Render(fmt.Sprintf("%d", ctx.VarSum())),
		label.Render("Battery") + value.Render(battery),
		label.Render("Configured") + value.Render(fmt.Sprintf("%v", ctx.IsConfigured())),
	}

	box := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	body := ""
	for _, r := range rows {
		body += r + "\n"
	}
	fmt.Println(box.Render(body))
}

func errOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// runSSHDiagnose opens an interactive diagnostic shell to a sibling
// node, the way a field technician would reach a unit that has fallen
// off the service's own reporting.
func runSSHDiagnose(ip, user, pass string) {
	n := remote.New(user, pass, ip)
	n.Logger = platform.NewLogger(netsender.InfoLevel, os.Stderr, false)
	if err := n.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: could not connect: %v\n", progName, err)
		os.Exit(1)
	}
	defer n.Disconnect()

	fmt.Printf("connected to %s; running diagnostic commands\n", ip)
	for _, cmd := range []string{"uptime", "df -h /", "systemctl is-active netsender-node"} {
		out, err := n.Exec(cmd, 10*time.Second)
		if err != nil {
			fmt.Printf("$ %s\n%v\n", cmd, err)
			continue
		}
		fmt.Printf("$ %s\n%s\n", cmd, out)
	}
}
