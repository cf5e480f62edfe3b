package host

// Capability identifiers resolved through a FeatureSet at instantiation.
const (
	URISchedule        = "urn:rtwork:worker#schedule"
	URIWorkerInterface = "urn:rtwork:worker#interface"
)

// Status is the result of every call that crosses the host boundary.
type Status int

const (
	StatusSuccess Status = iota
	StatusErrUnknown
	StatusErrNoSpace
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusErrUnknown:
		return "unknown"
	case StatusErrNoSpace:
		return "no_space"
	default:
		return "invalid"
	}
}

// ThreadingClass identifies the context in which a capability is bound.
type ThreadingClass int

const (
	ClassInstantiation ThreadingClass = iota
	ClassAudio
	ClassOther
)

func (c ThreadingClass) String() string {
	switch c {
	case ClassInstantiation:
		return "instantiation"
	case ClassAudio:
		return "audio"
	default:
		return "other"
	}
}

// ScheduleFunc submits a request view. The view is valid only during the call;
// the host copies what it needs before returning.
type ScheduleFunc func(handle any, view []byte) Status

// ScheduleFeature is the scheduling capability issued to one instance.
// A nil ScheduleWork marks a non-conformant host.
type ScheduleFeature struct {
	Handle       any
	ScheduleWork ScheduleFunc
}

// RespondFunc delivers a response view from inside a Work call. The handle
// is valid only for that call.
type RespondFunc func(handle any, view []byte) Status

// InstanceKey identifies a registered instance. It is opaque to the host and
// resolved by the instance side through a checked lookup.
type InstanceKey struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// WorkerInterface is the executor capability a host calls back into.
type WorkerInterface interface {
	// Work runs deferred work for the instance on a non-real-time thread.
	// The host never overlaps two Work calls for the same instance.
	Work(key InstanceKey, respond RespondFunc, handle any, view []byte) Status

	// WorkResponse delivers one response in the real-time serialization domain.
	WorkResponse(key InstanceKey, view []byte) Status

	// EndRun signals that every response of the current cycle was delivered.
	EndRun(key InstanceKey) Status
}

// FeatureSet maps capability identifiers to host-issued capabilities. It is
// built once at instantiation and read-only afterwards.
type FeatureSet struct {
	features map[string]any
}

// NewFeatureSet creates a FeatureSet from the given capabilities.
func NewFeatureSet(features map[string]any) *FeatureSet {
	fs := &FeatureSet{features: make(map[string]any, len(features))}
	for uri, f := range features {
		fs.features[uri] = f
	}
	return fs
}

// Lookup returns the capability registered under uri.
func (fs *FeatureSet) Lookup(uri string) (any, bool) {
	if fs == nil {
		return nil, false
	}
	f, ok := fs.features[uri]
	return f, ok
}

// Schedule returns the scheduling capability, if the host supplied one.
func (fs *FeatureSet) Schedule() (ScheduleFeature, bool) {
	f, ok := fs.Lookup(URISchedule)
	if !ok {
		return ScheduleFeature{}, false
	}
	switch sf := f.(type) {
	case ScheduleFeature:
		return sf, true
	case *ScheduleFeature:
		if sf == nil {
			return ScheduleFeature{}, false
		}
		return *sf, true
	default:
		return ScheduleFeature{}, false
	}
}
