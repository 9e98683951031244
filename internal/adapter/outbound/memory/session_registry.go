package memory

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/parcelapi/planengine/internal/domain/billing"
	"go.uber.org/zap"
)

const (
	defaultSessionCapacity = 10000
	defaultSessionTTL      = 2 * time.Hour
)

// sessionRegistry implements billing.SessionRegistry with an expiring LRU.
// A session is dropped once its TTL has passed since it was added, or when
// capacity pushes it out.
type sessionRegistry struct {
	sessions *lru.LRU[uuid.UUID, *billing.Session]
}

// NewSessionRegistry creates an in-memory session registry.
func NewSessionRegistry(capacity int, ttl time.Duration, logger *zap.Logger) billing.SessionRegistry {
	if capacity <= 0 {
		capacity = defaultSessionCapacity
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	onEvict := func(id uuid.UUID, _ *billing.Session) {
		logger.Debug("session evicted", zap.String("session_id", id.String()))
	}

	return &sessionRegistry{
		sessions: lru.NewLRU[uuid.UUID, *billing.Session](capacity, onEvict, ttl),
	}
}

func (r *sessionRegistry) Add(session *billing.Session) {
	r.sessions.Add(session.ID(), session)
}

func (r *sessionRegistry) Get(id uuid.UUID) (*billing.Session, error) {
	session, ok := r.sessions.Get(id)
	if !ok {
		return nil, billing.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRegistry) Remove(id uuid.UUID) {
	r.sessions.Remove(id)
}

func (r *sessionRegistry) Len() int {
	return r.sessions.Len()
}

// Compile-time check
var _ billing.SessionRegistry = (*sessionRegistry)(nil)
