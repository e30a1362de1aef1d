package service

import (
	"go.uber.org/zap"
)

// Side effect names
const (
	EffectActivityLog     = "activity_log"
	EffectProjectCascade  = "project_cascade"
	EffectStageAutomation = "stage_automation"
	EffectSourceCleanup   = "source_cleanup"
)

// SideEffect is the outcome of one best-effort step that ran after the
// primary operation succeeded
type SideEffect struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SideEffects collects best-effort outcomes. A failed entry never changes the
// primary result it is attached to.
type SideEffects []SideEffect

// run executes fn and records its outcome. Failures are logged at warn level.
func (s *SideEffects) run(log *zap.Logger, name string, fn func() error, fields ...zap.Field) {
	err := fn()
	if err == nil {
		*s = append(*s, SideEffect{Name: name, OK: true})
		return
	}

	*s = append(*s, SideEffect{Name: name, Error: err.Error()})
	log.Warn("Side effect failed",
		append(fields, zap.String("side_effect", name), zap.Error(err))...,
	)
}

// Failed returns the entries that did not succeed
func (s SideEffects) Failed() []SideEffect {
	var failed []SideEffect
	for _, effect := range s {
		if !effect.OK {
			failed = append(failed, effect)
		}
	}
	return failed
}
