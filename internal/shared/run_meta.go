package shared

import (
	"time"
)

// GenerationMode identifies which generator produced a plan.
type GenerationMode string

const (
	ModeTemplate GenerationMode = "template"
	ModeFetch    GenerationMode = "fetch"
)

// RunMeta holds operational metadata for one plan generation.
type RunMeta struct {
	Mode      GenerationMode
	Diet      string
	Skill     string
	Requested int
	Produced  int
	Failed    int
	Fallback  bool
	Latency   time.Duration
}

// Degraded reports whether the run produced fewer meals than requested.
func (m RunMeta) Degraded() bool {
	return m.Produced < m.Requested
}
