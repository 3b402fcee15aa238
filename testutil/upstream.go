package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Reply is a canned upstream response
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSONReply is a 200 application/json reply
func JSONReply(body []byte) Reply {
	return Reply{Status: http.StatusOK, ContentType: "application/json", Body: body}
}

// TextReply is a 200 text/plain reply
func TextReply(body string) Reply {
	return Reply{Status: http.StatusOK, ContentType: "text/plain; charset=utf-8", Body: []byte(body)}
}

// Upstream is a fake chatlog service. Replies are keyed by path; when the
// "format" query parameter is set the key "<path>?format=<value>" is tried
// first. Unknown paths answer 404.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []*url.URL
}

// NewUpstream starts a fake service that is closed with the test
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{replies: make(map[string]Reply)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

// Handle registers the reply for key
func (u *Upstream) Handle(key string, reply Reply) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.replies[key] = reply
}

// Requests returns the URLs received so far
func (u *Upstream) Requests() []*url.URL {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*url.URL(nil), u.requests...)
}

// RequestCount returns how many requests were received
func (u *Upstream) RequestCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	copied := *r.URL
	u.requests = append(u.requests, &copied)

	reply, ok := Reply{}, false
	if format := r.URL.Query().Get("format"); format != "" {
		reply, ok = u.replies[r.URL.Path+"?format="+format]
	}
	if !ok {
		reply, ok = u.replies[r.URL.Path]
	}
	u.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(reply.Body)
}
