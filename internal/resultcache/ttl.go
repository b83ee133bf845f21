package resultcache

import "time"

// DefaultTTL is how long a cached outcome stays fresh. Outcomes are also
// purged whenever the dataset changes, so this only bounds stale storage.
const DefaultTTL = time.Hour

// CleanupSchedule runs the cleanup job every fifteen minutes
const CleanupSchedule = "0 */15 * * * *"
