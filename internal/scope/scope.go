package scope

type Scope int

const (
	Singleton Scope = iota
	Transient
	Request
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Request:
		return "request"
	default:
		return "unknown"
	}
}

// Tracked reports whether instances of the scope are recorded for lifecycle
// hooks. Only singletons have a single instance whose hooks can run once.
func (s Scope) Tracked() bool {
	return s == Singleton
}
