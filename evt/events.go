package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ApplicationStarted fires on start of the application. Parameter: version number, build time
	ApplicationStarted = "application:started"

	// SessionCacheChanged fires if the number of pooled sessions changed, Parameter: new count
	SessionCacheChanged = "sessionCache:changed"

	// SessionCacheHit fires if a pooled session was handed out
	SessionCacheHit = "sessionCache:hit"

	// SessionCacheMiss fires if no pooled session was available for a key
	SessionCacheMiss = "sessionCache:miss"

	// SessionReaped fires if the reaper evicted a session. Parameter: stolen (entry was not stale anymore)
	SessionReaped = "sessionCache:reaped"

	// SessionDisposeFailed fires if an evicted session couldn't be closed. Parameter: error
	SessionDisposeFailed = "sessionCache:disposeFailed"

	// SessionProbeFailed fires if a pooled session was dead on reuse
	SessionProbeFailed = "session:probeFailed"

	// SessionDialed fires after a new vendor session was created. Parameter: tenant
	SessionDialed = "session:dialed"

	// SessionDialFailed fires on each failed login attempt. Parameter: tenant
	SessionDialFailed = "session:dialFailed"
)

// nolint
var evtBus = EventBus.New()

func Bus() EventBus.Bus {
	return evtBus
}
