package config

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// Machine identifies the machine the process runs on.
type Machine struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CurrentMachine returns a stable identifier and the hostname for this
// machine. The identifier is hashed per-application so it cannot be
// correlated across programs.
func CurrentMachine() (Machine, error) {
	id, err := machineid.ProtectedID("photostore")
	if err != nil {
		return Machine{}, fmt.Errorf("failed to read machine id: %w", err)
	}

	name, err := os.Hostname()
	if err != nil {
		name = "unknown"
	}

	return Machine{ID: id, Name: name}, nil
}
