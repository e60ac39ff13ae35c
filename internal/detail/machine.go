// Package detail drives the book detail view: identity resolution, item
// loading and the bookmark/annotation interactions, with explicit
// UI-visible states.
package detail

import (
	"context"
	"sync"

	"github.com/shelfmark/shelfmark/internal/domain"
)

// State is the top-level view state.
//
//	CheckingAuth → (Unauthenticated | LoadingItem)
//	LoadingItem  → (ItemUnavailable | Ready)
//
// Unauthenticated and ItemUnavailable are terminal for a view instance;
// Ready carries the bookmark sub-state and the in-flight flags.
type State string

const (
	StateCheckingAuth    State = "checking_auth"
	StateUnauthenticated State = "unauthenticated"
	StateLoadingItem     State = "loading_item"
	StateItemUnavailable State = "item_unavailable"
	StateReady           State = "ready"
)

// BookmarkService is the slice of the reconciliation service the view needs.
type BookmarkService interface {
	IsBookmarked(ctx context.Context, uid, bookID string) (bool, error)
	Toggle(ctx context.Context, uid string, book *domain.Book) (bool, error)
	Memo(ctx context.Context, uid, bookID string) (string, error)
	SaveMemo(ctx context.Context, uid, bookID, memo string) error
	Status(ctx context.Context, uid, bookID string) (*domain.Status, error)
	SetStatus(ctx context.Context, uid, bookID string, status domain.Status) error
}

// ItemSource resolves a catalog item by id when the navigating view did not
// hand one in.
type ItemSource interface {
	Volume(ctx context.Context, id string) (*domain.Book, error)
}

// Snapshot is the serializable view of the machine at one instant.
type Snapshot struct {
	State      State        `json:"state"`
	Book       *domain.Book `json:"book,omitempty"`
	Bookmarked bool         `json:"bookmarked"`
	Memo       string       `json:"memo"`
	// Status is the displayed reading status. It may briefly run ahead of
	// the store while an optimistic update is in flight.
	Status           domain.Status `json:"status"`
	BookmarkMutating bool          `json:"bookmark_mutating"`
	MemoSaving       bool          `json:"memo_saving"`
	StatusSaving     bool          `json:"status_saving"`
	// Notice is the last user-facing message from a failed operation.
	Notice string `json:"notice,omitempty"`
}

// Machine is the detail view state machine for one (user, book) view
// instance. Methods are safe for concurrent UI triggers; mutations hold an
// in-flight flag instead of queueing, so a rapid double-click collapses into
// one store operation.
type Machine struct {
	svc   BookmarkService
	items ItemSource

	mu         sync.Mutex
	state      State
	uid        string
	book       *domain.Book
	bookmarked bool
	memo       string

	// displayed is UI-owned and updated optimistically; persisted tracks the
	// last store-confirmed value. On a failed persist, displayed reverts.
	displayed domain.Status
	persisted domain.Status

	bookmarkMutating bool
	memoSaving       bool
	statusSaving     bool
	notice           string
}

// NewMachine creates a machine in CheckingAuth.
func NewMachine(svc BookmarkService, items ItemSource) *Machine {
	return &Machine{
		svc:       svc,
		items:     items,
		state:     StateCheckingAuth,
		displayed: domain.StatusTodo,
		persisted: domain.StatusTodo,
	}
}

// Load resolves identity and item, then the bookmark sub-state.
//
// uid comes from the identity collaborator; empty means unauthenticated
// (terminal). provided is the item payload handed in by the navigating view;
// when nil the item is fetched from the catalog by id. Read failures on
// memo/status surface as a notice and fall back to defaults; they do not
// prevent the Ready state.
func (m *Machine) Load(ctx context.Context, uid, bookID string, provided *domain.Book) {
	m.mu.Lock()
	if uid == "" {
		m.state = StateUnauthenticated
		m.mu.Unlock()
		return
	}
	m.uid = uid
	m.state = StateLoadingItem
	m.mu.Unlock()

	book := provided
	if book == nil && m.items != nil && bookID != "" {
		fetched, err := m.items.Volume(ctx, bookID)
		if err == nil {
			book = fetched
		}
	}
	if book == nil || book.ID == "" {
		m.mu.Lock()
		m.state = StateItemUnavailable
		m.mu.Unlock()
		return
	}

	bookmarked, err := m.svc.IsBookmarked(ctx, uid, book.ID)
	if err != nil {
		m.mu.Lock()
		m.book = book
		m.state = StateReady
		m.notice = "Could not load bookmark state."
		m.mu.Unlock()
		return
	}

	memo := ""
	status := domain.StatusTodo
	var memoErr, statusErr error
	if bookmarked {
		// Membership is known; memo and status load concurrently.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			memo, memoErr = m.svc.Memo(ctx, uid, book.ID)
		}()
		go func() {
			defer wg.Done()
			var st *domain.Status
			st, statusErr = m.svc.Status(ctx, uid, book.ID)
			if statusErr == nil && st != nil {
				status = *st
			}
		}()
		wg.Wait()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.book = book
	m.bookmarked = bookmarked
	m.memo = memo
	m.displayed = status
	m.persisted = status
	m.state = StateReady
	if memoErr != nil || statusErr != nil {
		m.notice = "Could not load annotations."
	}
}

// Toggle flips the bookmark. While a toggle is already in flight the call is
// a no-op returning the current displayed state, so concurrent UI triggers
// cannot stack store writes. After unbookmarking, local memo and status
// reset to defaults: the remote record is gone and the edits have nothing to
// attach to.
func (m *Machine) Toggle(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.state != StateReady {
		bookmarked := m.bookmarked
		m.mu.Unlock()
		return bookmarked, domain.ErrItemUnavailable
	}
	if m.bookmarkMutating {
		bookmarked := m.bookmarked
		m.mu.Unlock()
		return bookmarked, nil
	}
	m.bookmarkMutating = true
	uid, book := m.uid, m.book
	m.mu.Unlock()

	state, err := m.svc.Toggle(ctx, uid, book)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmarkMutating = false
	if err != nil {
		m.notice = "Could not update bookmark. Please try again."
		return m.bookmarked, err
	}
	m.bookmarked = state
	if !state {
		m.memo = ""
		m.displayed = domain.StatusTodo
		m.persisted = domain.StatusTodo
	}
	m.notice = ""
	return state, nil
}

// SetStatus applies an optimistic status change: the displayed value updates
// immediately, then the store write runs. On failure the displayed value
// reverts to the last persisted one and a notice is set.
func (m *Machine) SetStatus(ctx context.Context, status domain.Status) error {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return domain.ErrItemUnavailable
	}
	prev := m.persisted
	m.displayed = status
	m.statusSaving = true
	uid, bookID := m.uid, m.book.ID
	m.mu.Unlock()

	err := m.svc.SetStatus(ctx, uid, bookID, status)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusSaving = false
	if err != nil {
		m.displayed = prev
		m.notice = noticeFor(err)
		return err
	}
	m.persisted = status
	m.notice = ""
	return nil
}

// SaveMemo persists the memo on explicit save. The memo field is not
// cleared optimistically; on failure the edited text stays in place so the
// user can retry.
func (m *Machine) SaveMemo(ctx context.Context, memo string) error {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return domain.ErrItemUnavailable
	}
	m.memoSaving = true
	uid, bookID := m.uid, m.book.ID
	m.mu.Unlock()

	err := m.svc.SaveMemo(ctx, uid, bookID, memo)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.memoSaving = false
	if err != nil {
		m.notice = noticeFor(err)
		return err
	}
	m.memo = memo
	m.notice = ""
	return nil
}

// State returns the current top-level state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the full view state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:            m.state,
		Book:             m.book,
		Bookmarked:       m.bookmarked,
		Memo:             m.memo,
		Status:           m.displayed,
		BookmarkMutating: m.bookmarkMutating,
		MemoSaving:       m.memoSaving,
		StatusSaving:     m.statusSaving,
		Notice:           m.notice,
	}
}

func noticeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case err == domain.ErrBookmarkRequired:
		return "Bookmark this book first."
	case err == domain.ErrInvalidStatus:
		return "Unknown reading status."
	default:
		return "Could not save. Please try again."
	}
}
