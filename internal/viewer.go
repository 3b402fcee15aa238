package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// currentSourceKey is the state key holding the selected source as JSON
const currentSourceKey = "currentSource"

// Resources tracked for request invalidation
const (
	resourceSources  = "sources"
	resourceContacts = "contacts"
	resourceSessions = "sessions"
	resourceChatLogs = "chatlogs"
)

// Pagination is the chat log paging state
type Pagination struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// Viewer holds the display state of the viewer: the selected source, the
// last fetched lists and chat log paging.
//
// Each fetch takes a generation number for its resource. When a fetch
// finishes after a newer fetch of the same resource was started, its result
// is still returned to its caller but does not replace the display state.
type Viewer struct {
	api   *API
	state StateStore
	log   Logger

	mu       sync.Mutex
	sources  []Source
	current  *Source
	sessions []SessionRecord
	contacts Page[Contact]
	chatLogs []ChatLogRecord
	page     int
	pageSize int
	total    int
	gens     map[string]uint64
}

// NewViewer creates a Viewer. state may be nil, in which case the selected
// source is kept in memory only.
func NewViewer(api *API, state StateStore, log Logger) *Viewer {
	if state == nil {
		state = NewMemoryStateStore()
	}
	return &Viewer{
		api:      api,
		state:    state,
		log:      orNop(log),
		page:     DefaultPage,
		pageSize: DefaultPageSize,
		contacts: Page[Contact]{Items: []Contact{}},
		gens:     make(map[string]uint64),
	}
}

// Init loads the source list and restores the saved source. Failures are
// logged, not returned, so the viewer always starts.
func (v *Viewer) Init(ctx context.Context) {
	if _, err := v.FetchSources(ctx); err != nil {
		v.log.Errorf("Failed to load sources: %v", err)
	}
	v.RestoreSource()
}

// RestoreSource reads the saved source from the state store. Unreadable or
// corrupt state is ignored and leaves no source selected.
func (v *Viewer) RestoreSource() *Source {
	raw, ok, err := v.state.Get(currentSourceKey)
	if err != nil {
		v.log.Warnf("Failed to read saved source: %v", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var src Source
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &src); err != nil {
		v.log.Warnf("Ignoring corrupt saved source: %v", err)
		return nil
	}
	if src.SourceID == "" {
		v.log.Warnf("Ignoring saved source %q without a source id", src.Name)
		return nil
	}

	v.mu.Lock()
	v.current = &src
	v.mu.Unlock()
	return v.CurrentSource()
}

// SelectSource makes src the active source and persists it. A nil src
// clears the selection and the saved state.
func (v *Viewer) SelectSource(src *Source) error {
	if src != nil && src.SourceID == "" {
		return fmt.Errorf("source %q has no source id: %w", src.Label(), ErrNoSourceSelected)
	}

	v.mu.Lock()
	if src == nil {
		v.current = nil
	} else {
		cp := *src
		v.current = &cp
	}
	v.mu.Unlock()

	if src == nil {
		return v.state.Delete(currentSourceKey)
	}
	data, err := sonic.ConfigStd.MarshalToString(src)
	if err != nil {
		return &StateError{Op: "set", Key: currentSourceKey, Err: err}
	}
	return v.state.Set(currentSourceKey, data)
}

// SelectSourceByID looks id up in the source list and selects it
func (v *Viewer) SelectSourceByID(ctx context.Context, id string) (*Source, error) {
	sources, err := v.FetchSources(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sources {
		if sources[i].SourceID == id {
			if err := v.SelectSource(&sources[i]); err != nil {
				return nil, err
			}
			return &sources[i], nil
		}
	}
	return nil, fmt.Errorf("source %q not found", id)
}

// CurrentSource returns a copy of the selected source, or nil
func (v *Viewer) CurrentSource() *Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil
	}
	cp := *v.current
	return &cp
}

// HasCurrentSource reports whether a source is selected
func (v *Viewer) HasCurrentSource() bool {
	return v.CurrentSource() != nil
}

// requireSource returns the selected source id. A source without an id
// counts as no selection.
func (v *Viewer) requireSource() (string, error) {
	src := v.CurrentSource()
	if src == nil || src.SourceID == "" {
		return "", ErrNoSourceSelected
	}
	return src.SourceID, nil
}

func (v *Viewer) begin(resource string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gens[resource]++
	return v.gens[resource]
}

// commit runs apply under the lock if gen is still the newest fetch of
// resource
func (v *Viewer) commit(resource string, gen uint64, apply func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gens[resource] != gen {
		v.log.Debugf("Discarding stale %s response", resource)
		return false
	}
	apply()
	return true
}

// FetchSources loads the upstream source list
func (v *Viewer) FetchSources(ctx context.Context) ([]Source, error) {
	gen := v.begin(resourceSources)
	sources, err := v.api.Sources(ctx)
	if err != nil {
		return nil, err
	}
	v.commit(resourceSources, gen, func() { v.sources = sources })
	return sources, nil
}

// TestSource checks connectivity of sourceID, or of the selected source when
// sourceID is empty
func (v *Viewer) TestSource(ctx context.Context, sourceID string) (*SourceTestResult, error) {
	if sourceID == "" {
		id, err := v.requireSource()
		if err != nil {
			return nil, err
		}
		sourceID = id
	}
	return v.api.TestSource(ctx, sourceID)
}

// FetchContacts loads one page of contacts of the selected source
func (v *Viewer) FetchContacts(ctx context.Context, page, pageSize int) (Page[Contact], error) {
	sourceID, err := v.requireSource()
	if err != nil {
		return Page[Contact]{}, err
	}
	gen := v.begin(resourceContacts)
	contacts, err := v.api.Contacts(ctx, sourceID, page, pageSize)
	if err != nil {
		return Page[Contact]{}, err
	}
	v.commit(resourceContacts, gen, func() { v.contacts = contacts })
	return contacts, nil
}

// FetchSessions loads the sessions of the selected source
func (v *Viewer) FetchSessions(ctx context.Context) ([]SessionRecord, error) {
	sourceID, err := v.requireSource()
	if err != nil {
		return nil, err
	}
	gen := v.begin(resourceSessions)
	sessions, err := v.api.Sessions(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	v.commit(resourceSessions, gen, func() { v.sessions = sessions })
	return sessions, nil
}

// FetchChatLogs loads the current page of chat logs of the selected source.
// Limit and offset come from the paging state and override q.
func (v *Viewer) FetchChatLogs(ctx context.Context, q ChatLogQuery) (Page[ChatLogRecord], error) {
	sourceID, err := v.requireSource()
	if err != nil {
		return Page[ChatLogRecord]{}, err
	}

	v.mu.Lock()
	page, pageSize := v.page, v.pageSize
	v.mu.Unlock()
	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize

	gen := v.begin(resourceChatLogs)
	logs, err := v.api.ChatLogs(ctx, sourceID, q)
	if err != nil {
		return Page[ChatLogRecord]{}, err
	}
	v.commit(resourceChatLogs, gen, func() {
		v.chatLogs = logs.Items
		v.total = logs.Total
	})
	return logs, nil
}

// FetchChatLogsRaw loads the plaintext transcript of the selected source
func (v *Viewer) FetchChatLogsRaw(ctx context.Context, q ChatLogQuery) ([]ChatLogRecord, error) {
	sourceID, err := v.requireSource()
	if err != nil {
		return nil, err
	}
	return v.api.ChatLogsRaw(ctx, sourceID, q)
}

// ExportChatLogs loads the CSV export of the selected source
func (v *Viewer) ExportChatLogs(ctx context.Context, q ChatLogQuery) (*Table, error) {
	sourceID, err := v.requireSource()
	if err != nil {
		return nil, err
	}
	return v.api.ExportChatLogs(ctx, sourceID, q)
}

// SetPage sets the chat log page; values below 1 fall back to the defaults
func (v *Viewer) SetPage(page, pageSize int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	v.mu.Lock()
	v.page = page
	v.pageSize = pageSize
	v.mu.Unlock()
}

// Pagination returns the chat log paging state
func (v *Viewer) Pagination() Pagination {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Pagination{Current: v.page, PageSize: v.pageSize, Total: v.total}
}

// Sources returns the last fetched source list
func (v *Viewer) Sources() []Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Source(nil), v.sources...)
}

// Sessions returns the last fetched sessions
func (v *Viewer) Sessions() []SessionRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]SessionRecord(nil), v.sessions...)
}

// Contacts returns the last fetched contact page
func (v *Viewer) Contacts() Page[Contact] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contacts
}

// ChatLogs returns the last fetched chat logs
func (v *Viewer) ChatLogs() []ChatLogRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ChatLogRecord(nil), v.chatLogs...)
}
