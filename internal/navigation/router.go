package navigation

import (
	"context"
	"sync"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
)

// AuthChecker reports whether an owner is signed in.
type AuthChecker interface {
	IsAuthenticated(ctx context.Context, owner string) (bool, error)
}

// ErrNotNavigable is returned for views that only system events may enter.
var ErrNotNavigable = errors.New(errors.ErrorTypeValidation, errors.CodeInvalidInput, "This screen cannot be opened directly")

// Ticket identifies a pending analysis. It goes stale as soon as the owner
// navigates anywhere.
type Ticket struct {
	Owner      string
	generation uint64
}

type ownerState struct {
	view       View
	generation uint64
}

// Router keeps the current view per owner. Every transition bumps the
// owner's generation, which invalidates outstanding tickets.
type Router struct {
	auth AuthChecker

	mu     sync.Mutex
	owners map[string]*ownerState
}

func NewRouter(auth AuthChecker) *Router {
	return &Router{
		auth:   auth,
		owners: make(map[string]*ownerState),
	}
}

func (r *Router) state(owner string) *ownerState {
	st, ok := r.owners[owner]
	if !ok {
		st = &ownerState{view: Landing{}}
		r.owners[owner] = st
	}
	return st
}

func (r *Router) set(owner string, v View) {
	st := r.state(owner)
	st.view = v
	st.generation++
}

// Current returns the owner's view, Landing for unknown owners.
func (r *Router) Current(owner string) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(owner).view
}

// Navigate switches to target. Protected views redirect a signed-out owner
// to Landing and return Unauthenticated along with the view actually shown.
func (r *Router) Navigate(ctx context.Context, owner string, target View) (View, error) {
	if _, ok := target.(Result); ok {
		return r.Current(owner), ErrNotNavigable
	}

	if Protected(target) {
		ok, err := r.auth.IsAuthenticated(ctx, owner)
		if err != nil {
			return r.Current(owner), err
		}
		if !ok {
			r.mu.Lock()
			r.set(owner, Landing{})
			r.mu.Unlock()
			logger.Debug("Redirected unauthenticated navigation", "owner", owner, "target", target.Name())
			return Landing{}, errors.NewUnauthenticatedError()
		}
	}

	r.mu.Lock()
	r.set(owner, target)
	r.mu.Unlock()
	return target, nil
}

// Back returns to Landing, the only back target.
func (r *Router) Back(owner string) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set(owner, Landing{})
	return Landing{}
}

// BeginAnalysis issues a ticket tied to the owner's current generation.
func (r *Router) BeginAnalysis(owner string) Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Ticket{Owner: owner, generation: r.state(owner).generation}
}

// CompleteAnalysis shows the result for entryID if t is still current and
// reports whether it did.
func (r *Router) CompleteAnalysis(t Ticket, entryID int64) (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(t.Owner)
	if st.generation != t.generation {
		logger.Debug("Discarded stale analysis result", "owner", t.Owner, "entry_id", entryID)
		return st.view, false
	}
	v := Result{EntryID: entryID}
	st.view = v
	st.generation++
	return v, true
}

// Forget drops all state for owner, as on sign out.
func (r *Router) Forget(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.owners[owner]; ok {
		// keep tickets issued before sign out from applying later
		st.view = Landing{}
		st.generation++
	}
}
