package paxos

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Registry owns a lazily built comparator.
//
// Get builds the comparator on first use and returns the same instance until Shutdown.
// Shutdown doesn't wait for callers still comparing with the old instance.
type Registry struct {
	mu    sync.Mutex
	codec KeyCodec
	cur   *lifetime

	// constructed counts the comparators built so far.
	constructed uint64
}

// lifetime is one Get..Shutdown span of the registry.
type lifetime struct {
	once sync.Once
	cmp  *Comparator
}

// Get returns the comparator, building it if this is the first call since creation or Shutdown.
// Concurrent first callers all wait for the single construction and get the same instance.
func (r *Registry) Get() *Comparator {
	r.mu.Lock()
	if r.cur == nil {
		r.cur = &lifetime{}
	}
	lt, codec := r.cur, r.codec
	r.mu.Unlock()

	lt.once.Do(func() {
		lt.cmp = NewComparator(codec)
		n := atomic.AddUint64(&r.constructed, 1)

		log.WithFields(log.Fields{"name": lt.cmp.Name(), "constructed": n}).Info("paxos::registry: Get; built comparator")
	})

	return lt.cmp
}

// Shutdown drops the comparator. The next Get builds a new one.
//
// The caller must make sure nothing is using the old comparator.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cur == nil {
		return
	}
	r.cur = nil

	log.Info("paxos::registry: Shutdown; dropped comparator")
}

// SetCodec changes the codec used for the next comparator built.
// It has no effect on an already built comparator until Shutdown. A nil codec means TextCodec.
func (r *Registry) SetCodec(codec KeyCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codec = codecOrDefault(codec)
}

// Constructed returns the number of comparators built by the registry.
func (r *Registry) Constructed() uint64 {
	return atomic.LoadUint64(&r.constructed)
}

// NewRegistry returns a registry building comparators for the codec.
// A nil codec means TextCodec.
func NewRegistry(codec KeyCodec) *Registry {
	return &Registry{codec: codecOrDefault(codec)}
}

func codecOrDefault(codec KeyCodec) KeyCodec {
	if codec == nil {
		log.Warn("paxos::registry: codecOrDefault; nil codec, using the text codec")
		return TextCodec
	}
	return codec
}

var defaultRegistry = NewRegistry(TextCodec)

// GetComparator returns the process wide comparator. It uses TextCodec unless Configure says otherwise.
func GetComparator() *Comparator {
	return defaultRegistry.Get()
}

// Shutdown drops the process wide comparator.
func Shutdown() {
	defaultRegistry.Shutdown()
}

// Configure sets the codec of the process wide comparator.
// Call it before the first GetComparator, or after Shutdown.
func Configure(codec KeyCodec) {
	defaultRegistry.SetCodec(codec)
}
