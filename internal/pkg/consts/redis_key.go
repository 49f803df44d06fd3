package consts

const (
	StatsDirtyKey           = "stats:dirty"
	StatsProcessingKey      = "stats:dirty:processing"
	VisibilityChannel       = "visibility:changed"
	SessionRevokedKeyPrefix = "session:revoked:"
	LoginNonceKeyPrefix     = "session:nonce:"
)

const (
	StatsRepairLock = "lock:stats:repair"
)
