package echoportal

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SaurabhAlex/school-management-web/core"
	"github.com/SaurabhAlex/school-management-web/core/nav"
	"github.com/SaurabhAlex/school-management-web/core/resource"
	"github.com/SaurabhAlex/school-management-web/core/session"
	"github.com/SaurabhAlex/school-management-web/services/schoolapi"
)

// StorageFactory returns the session storage of one browser.
type StorageFactory func(sid string) session.Storage

// Workspace is everything one browser works with: its session, its API client, its caches and its guard.
type Workspace struct {
	ID      string
	Session session.Store
	API     *schoolapi.Client
	Set     *resource.Set
	Guard   *nav.Guard

	lastSeen time.Time
}

// workspaceSession drops the caches of the workspace along with a rejected session.
type workspaceSession struct {
	session.Store
	set *resource.Set
}

func (s *workspaceSession) HandleUnauthorized() {
	s.Store.HandleUnauthorized()
	s.set.Reset()
}

func (s *workspaceSession) Logout() error {
	err := s.Store.Logout()
	s.set.Reset()
	return err
}

type WorkspacesOptions struct {
	API         *schoolapi.Client
	Storage     StorageFactory
	IdleTimeout time.Duration
	Resource    []resource.Option
	Logger      core.Logger
}

// Workspaces keeps the workspace of every browser, by session id.
type Workspaces struct {
	mutex sync.Mutex
	table map[string]*Workspace
	opts  WorkspacesOptions
	now   func() time.Time
}

func NewWorkspaces(opts WorkspacesOptions) *Workspaces {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger{}
	}
	return &Workspaces{table: make(map[string]*Workspace), opts: opts, now: time.Now}
}

// Get returns the workspace of sid, creating one (under a new id when sid is unknown).
// Sessions persisted by the storage survive a restart of the portal: a known sid reopens them.
func (ws *Workspaces) Get(sid string) *Workspace {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if w, ok := ws.table[sid]; ok {
		w.lastSeen = ws.now()
		return w
	}
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
	}
	w := ws.open(sid)
	ws.table[sid] = w
	return w
}

func (ws *Workspaces) open(sid string) *Workspace {
	storage := ws.opts.Storage(sid)
	auth := ws.opts.API.Auth()

	w := &Workspace{ID: sid, lastSeen: ws.now()}
	sess := &workspaceSession{Store: session.NewStore(storage, auth, ws.opts.Logger)}
	api := ws.opts.API.WithSession(sess)
	sess.set = resource.NewSet(api.SetFuncs(), ws.opts.Resource...)

	w.Session, w.API, w.Set = sess, api, sess.set
	w.Guard = nav.NewGuard(sess)
	return w
}

// Sweep forgets the workspaces idle for longer than the idle timeout and returns how many.
// Their persisted sessions are kept.
func (ws *Workspaces) Sweep() int {
	if ws.opts.IdleTimeout <= 0 {
		return 0
	}
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	deadline := ws.now().Add(-ws.opts.IdleTimeout)
	var n int
	for sid, w := range ws.table {
		if w.lastSeen.Before(deadline) {
			delete(ws.table, sid)
			n++
		}
	}
	return n
}

func (ws *Workspaces) Len() int {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	return len(ws.table)
}
