/*
NAME
  netsender-provision - writes a new node's first persisted Config blob.

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

// netsender-provision reads a YAML seed describing a new node and
// writes its first persisted Config blob, so that netsender-node finds
// a valid configuration on its very first boot.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ausocean/netsender/netsender"
	"github.com/ausocean/netsender/platform"
)

const configBlobSize = 336 // size of netsender's packed Config blob.

// seedFile is the on-disk YAML shape an installer authors once per
// node, mirroring the fields netsender.Seed needs plus a storage path.
type seedFile struct {
	WiFiSSID   string `yaml:"wifi_ssid"`
	WiFiKey    string `yaml:"wifi_key"`
	DeviceKey  string `yaml:"device_key"`
	InputsCSV  string `yaml:"inputs"`
	OutputsCSV string `yaml:"outputs"`
	MonPeriod  uint16 `yaml:"mon_period"`
	ActPeriod  uint16 `yaml:"act_period"`
	StorePath  string `yaml:"store_path"`
}

func main() {
	var seedPath string
	var promptKey bool

	root := &cobra.Command{
		Use:   "netsender-provision",
		Short: "Write a new node's first persisted Config blob",
		Long:  `netsender-provision reads a YAML seed file describing a new node
		(Wi-Fi credentials, device key, initial pin lists) and writes it as the
		first persisted Config blob, the way a technician provisions a unit
		before its first deployment.`,
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error {
			return provision(seedPath, promptKey)
		},
	}
	root.Flags().StringVarP(&seedPath, "seed", "s", "seed.yaml", "path to the YAML provisioning seed")
	root.Flags().BoolVar(&promptKey, "prompt-key", false, "prompt for the Wi-Fi key instead of reading it from the seed file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func provision(seedPath string, promptKey bool) error {
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("netsender-provision: could not read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return fmt.Errorf("netsender-provision: could not parse seed file: %w", err)
	}

	if promptKey || sf.WiFiKey == "" {
		key, err := promptPassword("Wi-Fi key: ")
		if err != nil {
			return fmt.Errorf("netsender-provision: could not read Wi-Fi key: %w", err)
		}
		sf.WiFiKey = key
	}

	if sf.StorePath == "" {
		sf.StorePath = "/var/lib/netsender/config.bin"
	}
	store, err := platform.NewFileStore(sf.StorePath, configBlobSize)
	if err != nil {
		return fmt.Errorf("netsender-provision: could not open store: %w", err)
	}

	seed := netsender.Seed{
		WiFiSSID:   sf.WiFiSSID,
		WiFiKey:    sf.WiFiKey,
		DeviceKey:  sf.DeviceKey,
		InputsCSV:  sf.InputsCSV,
		OutputsCSV: sf.OutputsCSV,
		MonPeriod:  sf.MonPeriod,
		ActPeriod:  sf.ActPeriod,
	}
	cfg, err := netsender.Provision(store, seed)
	if err != nil {
		return fmt.Errorf("netsender-provision: %w", err)
	}

	fmt.Printf("provisioned %s: inputs=%q outputs=%q mon=%ds act=%ds\n",
		sf.StorePath, cfg.InputsCSV, cfg.OutputsCSV, cfg.MonPeriod, cfg.ActPeriod)
	return nil
}

// promptPassword prompts for a secret with echo disabled when stdin is
// a terminal, falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		key, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(key), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
