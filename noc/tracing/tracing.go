// Package tracing provides the minimal task-tracing API the flit pipeline
// and switches use to mark a flit's progress through the network: a task
// begins when a flit enters a stage and ends when it leaves. Tracing is
// entirely hook-driven (spec's persistence Non-goal rules out a built-in
// sink); nothing is recorded unless a caller attaches a sim.Hook to the
// domain being traced.
package tracing

import "github.com/sarchlab/rubynoc/sim"

// A Task marks one unit of work (e.g. a flit transiting one switch)
// observed by a NamedHookable domain.
type Task struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Where    string
	Detail   interface{}
}

// HookPosTaskStart marks the start of a Task.
var HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}

// HookPosTaskEnd marks the end of a Task.
var HookPosTaskEnd = &sim.HookPos{Name: "HookPosTaskEnd"}

// StartTask notifies domain's hooks that a task has started. It is a
// no-op when domain has no hooks registered, so tracing costs nothing
// when nobody is listening.
func StartTask(
	id, parentID string,
	domain sim.NamedHookable,
	kind, what string,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskStart,
		Item: Task{
			ID:       id,
			ParentID: parentID,
			Kind:     kind,
			What:     what,
			Where:    domain.Name(),
			Detail:   detail,
		},
	})
}

// EndTask notifies domain's hooks that the task with the given id ended.
func EndTask(id string, domain sim.NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskEnd,
		Item:   Task{ID: id},
	})
}
