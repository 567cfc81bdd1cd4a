package climate

import (
	"github.com/i474232898/surfsup-climate-api/internal/logger"
)

// Service answers the read-only aggregate queries over a RecordStore.
// It holds no state besides its injected dependencies, so one Service can be
// shared by any number of concurrent callers.
type Service struct {
	store RecordStore
	log   *logger.Logger
}

// NewService creates a new Service.
func NewService(store RecordStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store: store,
		log:   log.With("component", "climate"),
	}
}
