package systemd

import (
	"sort"
	"strings"

	"github.com/modoterra/svcpanel/pkg/core"
)

// loadedMarker prefixes failed or otherwise highlighted units in list-units output.
const loadedMarker = "●"

// ServiceName strips the unit type suffix: "a.b.service" -> "a.b".
func ServiceName(id string) string {
	if i := strings.LastIndex(id, "."); i > 0 {
		return id[:i]
	}
	return id
}

// tableRows returns the whitespace-collapsed columns of each data row of a
// systemctl listing: the header row is skipped and parsing stops at the
// first blank line, which separates the legend.
func tableRows(output string) [][]string {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return nil
	}
	var rows [][]string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, loadedMarker))
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

// ParseUnits parses `systemctl list-units` output (columns UNIT LOAD ACTIVE SUB ...).
func ParseUnits(output string) []core.Item {
	var items []core.Item
	for _, cols := range tableRows(output) {
		if len(cols) < 4 {
			continue
		}
		id, load, active, sub := cols[0], cols[1], cols[2], cols[3]
		running := sub == "running"
		items = append(items, core.Item{
			ID:           id,
			Name:         ServiceName(id),
			IsEnabled:    load == "loaded",
			CanBeEnabled: false,
			IsActive:     active == "active" || running,
			IsRunning:    running,
		})
	}
	return items
}

// ParseUnitFiles parses `systemctl list-unit-files` output (columns UNIT STATE ...).
func ParseUnitFiles(output string) []core.Item {
	var items []core.Item
	for _, cols := range tableRows(output) {
		if len(cols) < 2 {
			continue
		}
		id, state := cols[0], cols[1]
		enabled := strings.HasPrefix(state, "enabled")
		items = append(items, core.Item{
			ID:           id,
			Name:         ServiceName(id),
			IsEnabled:    enabled || state == "generated",
			CanBeEnabled: enabled || state == "disabled",
		})
	}
	return items
}

// Merge overlays the loaded scan onto the unit-file scan. The result keeps
// unit-file order; loaded units without a unit file are not appended.
func Merge(loaded, unloaded []core.Item) []core.Item {
	byID := make(map[string]core.Item, len(loaded))
	for _, item := range loaded {
		byID[item.ID] = item
	}
	merged := make([]core.Item, 0, len(unloaded))
	for _, item := range unloaded {
		if l, ok := byID[item.ID]; ok {
			item.IsEnabled = l.IsEnabled
			item.IsActive = l.IsActive
			item.IsRunning = l.IsRunning
		}
		merged = append(merged, item)
	}
	return merged
}

// ParsePriorityList splits a comma-separated list, trimming whitespace and
// dropping empty tokens.
func ParsePriorityList(raw string) []string {
	var list []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			list = append(list, tok)
		}
	}
	return list
}

func statusRank(item core.Item) int {
	switch {
	case item.IsRunning:
		return 0
	case item.IsActive:
		return 1
	default:
		return 2
	}
}

// SortByStatus orders running items first, then active ones, keeping the
// relative order within each group.
func SortByStatus(items []core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return statusRank(items[i]) < statusRank(items[j])
	})
}

// FilterAndSort applies the priority list. With filter set, only listed
// items are kept; otherwise listed items are moved ahead of the rest.
// Both paths sort by status first. An empty filtered result is
// reported as core.ErrNoItemsFound.
func FilterAndSort(items []core.Item, priority []string, filter bool) ([]core.Item, error) {
	listed := make(map[string]struct{}, len(priority))
	for _, p := range priority {
		listed[p] = struct{}{}
	}
	isListed := func(item core.Item) bool {
		if _, ok := listed[item.ID]; ok {
			return true
		}
		_, ok := listed[item.Name]
		return ok
	}

	out := make([]core.Item, 0, len(items))
	if filter {
		for _, item := range items {
			if isListed(item) {
				out = append(out, item)
			}
		}
		if len(out) == 0 {
			return nil, core.NoItemsFound(noServiceFound)
		}
		SortByStatus(out)
		return out, nil
	}

	out = append(out, items...)
	SortByStatus(out)
	sort.SliceStable(out, func(i, j int) bool {
		return isListed(out[i]) && !isListed(out[j])
	})
	return out, nil
}
