package memcache_fx

import (
	"time"

	"go.uber.org/fx"

	mem "tripmate/pkg/memcache"
)

const sessionLockIdle = 30 * time.Minute

var Module = fx.Provide(provideSessionLocks)

func provideSessionLocks() mem.SessionLockStore {
	return mem.NewSessionLocks(sessionLockIdle)
}
