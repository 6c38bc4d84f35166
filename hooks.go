package nscache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths while holding its lock.
type Hooks interface {
	// Get finished as a hit or a miss (absent, expired or corrupt).
	Lookup(hit bool)

	// Get found an expired entry and deleted it.
	ExpiredOnRead(storageKey string)

	// An entry failed to decode and was deleted (on read or during sweep).
	CorruptEntry(storageKey string)

	// A sweep scanned the namespace.
	Swept(namespace string, scanned, removed int)

	// RemoveAll deleted removed entries under prefix.
	PrefixRemoved(prefix string, removed int)

	// The store or codec failed; op as in FaultError.Op.
	StoreFault(op, storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

var _ Hooks = NopHooks{}

func (NopHooks) Lookup(bool)                      {}
func (NopHooks) ExpiredOnRead(string)             {}
func (NopHooks) CorruptEntry(string)              {}
func (NopHooks) Swept(string, int, int)           {}
func (NopHooks) PrefixRemoved(string, int)        {}
func (NopHooks) StoreFault(string, string, error) {}
