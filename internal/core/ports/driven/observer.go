package driven

import (
	"time"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

// CallObserver receives call and stage measurements.
type CallObserver interface {
	// ObserveCall records one logical collaborator call after retries.
	// err is nil when any attempt succeeded.
	ObserveCall(source string, attempts int, duration time.Duration, err error)

	// ObserveStage records the duration of a completed stage.
	ObserveStage(stage domain.Stage, duration time.Duration)
}
