package task

import (
	"sort"
	"strconv"
	"strings"
)

// Selection addresses a set of tasks. At most one of TaskIDs, Group and All is
// meaningful; an empty selection means "let the daemon decide".
type Selection struct {
	TaskIDs []int  `json:"task_ids,omitempty"`
	Group   string `json:"group,omitempty"`
	All     bool   `json:"all,omitempty"`
}

// SelectIDs selects the given task ids.
func SelectIDs(ids ...int) Selection {
	return Selection{TaskIDs: append([]int(nil), ids...)}
}

// SelectGroup selects every task of a group.
func SelectGroup(name string) Selection {
	return Selection{Group: name}
}

// SelectAll selects every task.
func SelectAll() Selection {
	return Selection{All: true}
}

// SelectionFromParams mirrors the CLI flags: --all wins over --group, which
// wins over explicit ids. No flags and no ids selects everything.
func SelectionFromParams(all bool, group string, ids []int) Selection {
	if all {
		return SelectAll()
	}
	if strings.TrimSpace(group) != "" {
		return SelectGroup(strings.TrimSpace(group))
	}
	if len(ids) == 0 {
		return SelectAll()
	}
	return SelectIDs(ids...)
}

// Implicit reports whether the selection names nothing.
func (s Selection) Implicit() bool {
	return !s.All && s.Group == "" && len(s.TaskIDs) == 0
}

// Matches reports whether t belongs to the selection. Implicit selections
// match nothing.
func (s Selection) Matches(t Task) bool {
	switch {
	case s.All:
		return true
	case s.Group != "":
		return t.Group == s.Group
	default:
		for _, id := range s.TaskIDs {
			if id == t.ID {
				return true
			}
		}
		return false
	}
}

// SelectionKind tags the result of automatic task selection.
type SelectionKind int

const (
	Selected SelectionKind = iota
	NoneRunning
	Ambiguous
)

// AutoSelection is the outcome of SelectRunning.
type AutoSelection struct {
	Kind       SelectionKind
	ID         int
	Candidates []int
}

// SelectRunning picks the only running task from a snapshot. Candidates are
// sorted by id.
func SelectRunning(tasks []Task) AutoSelection {
	var running []int
	for _, t := range tasks {
		if t.IsRunning() {
			running = append(running, t.ID)
		}
	}
	sort.Ints(running)

	switch len(running) {
	case 0:
		return AutoSelection{Kind: NoneRunning}
	case 1:
		return AutoSelection{Kind: Selected, ID: running[0], Candidates: running}
	default:
		return AutoSelection{Kind: Ambiguous, Candidates: running}
	}
}

// JoinIDs renders ids as "1, 2, 3".
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
