package core

import (
	"fmt"
	"strings"
)

// Section identifies one of the supported service-manager categories.
type Section string

const (
	SectionSystemd Section = "systemd"
	SectionCron    Section = "cron"
	SectionDocker  Section = "docker"
	SectionPodman  Section = "podman"
)

// Sections lists every section in display order.
var Sections = []Section{SectionSystemd, SectionCron, SectionDocker, SectionPodman}

// ParseSection resolves a section name as typed on the command line.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q: expected one of systemd, cron, docker, podman", s)
}

// ActionType is a user-triggerable mutation on an item.
type ActionType string

const (
	ActionStart   ActionType = "start"
	ActionStop    ActionType = "stop"
	ActionRestart ActionType = "restart"
	ActionAdd     ActionType = "add"
	ActionRemove  ActionType = "remove"
)

// ParseActionType resolves an action name. "enable" and "disable" are
// accepted as aliases for add and remove.
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(s) {
	case "start":
		return ActionStart, nil
	case "stop":
		return ActionStop, nil
	case "restart":
		return ActionRestart, nil
	case "add", "enable":
		return ActionAdd, nil
	case "remove", "disable", "rm":
		return ActionRemove, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Item is the uniform record every service-manager adapter returns.
type Item struct {
	// ID is the manager-specific identifier: unit name, container ID or crontab line.
	ID string `json:"id"`
	// Name is the unit name without its type suffix (systemd only).
	Name         string   `json:"name,omitempty"`
	IsEnabled    bool     `json:"is_enabled"`
	CanBeEnabled bool     `json:"can_be_enabled"`
	IsActive     bool     `json:"is_active"`
	IsRunning    bool     `json:"is_running"`
	Names        []string `json:"names,omitempty"`
}

// FirstName returns the first alias of a container or image, or "".
func (i Item) FirstName() string {
	if len(i.Names) == 0 {
		return ""
	}
	return i.Names[0]
}
