package uptransport

import "github.com/ehrlich-b/go-uptransport/internal/constants"

// Re-export constants for public API
const (
	DefaultRequestTimeout     = constants.DefaultRequestTimeout
	DefaultDispatchWorkers    = constants.DefaultDispatchWorkers
	DefaultDispatchQueueBound = constants.DefaultDispatchQueueBound
	AttachmentVersion         = constants.AttachmentVersion
)
