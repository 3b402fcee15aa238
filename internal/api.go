package internal

import (
	"context"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Upstream endpoints
const (
	endpointSources    = "/api/admin/accounts"
	endpointSourceTest = "/api/v1/chatlog/test"
	endpointChatLogs   = "/api/v1/chatlog"
	endpointContacts   = "/api/v1/contact"
	endpointSessions   = "/api/v1/session"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// API exposes the upstream service as typed, normalized calls. Only transport
// failures are returned as errors; malformed payloads become empty results.
type API struct {
	fetcher    Fetcher
	parser     *Parser
	normalizer *Normalizer
	log        Logger
}

// NewAPI creates an API on top of fetcher
func NewAPI(fetcher Fetcher, parser *Parser, normalizer *Normalizer, log Logger) *API {
	log = orNop(log)
	if parser == nil {
		parser = NewParser(log, nil)
	}
	if normalizer == nil {
		normalizer = NewNormalizer(log)
	}
	return &API{
		fetcher:    fetcher,
		parser:     parser,
		normalizer: normalizer,
		log:        log,
	}
}

// SourceTestResult is the outcome of a source connectivity test
type SourceTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (a *API) get(ctx context.Context, endpoint string, params map[string]string) (*Response, RequestInfo, error) {
	info := RequestInfo{Method: "GET", Endpoint: endpoint}
	resp, err := a.fetcher.Get(ctx, endpoint, params)
	return resp, info, err
}

// Sources lists the configured upstream accounts
func (a *API) Sources(ctx context.Context) ([]Source, error) {
	resp, info, err := a.get(ctx, endpointSources, nil)
	if err != nil {
		return nil, err
	}
	page := decodePage[Source](a, info, a.normalizer.Normalize(info, resp.Body, ShapeArray))
	return page.Items, nil
}

// TestSource asks the service to check connectivity of a source
func (a *API) TestSource(ctx context.Context, sourceID string) (*SourceTestResult, error) {
	resp, info, err := a.get(ctx, endpointSourceTest, map[string]string{"source": sourceID})
	if err != nil {
		return nil, err
	}
	a.log.Debugf("%s %s payload: %s", info.Method, info.Endpoint, preview(string(resp.Body)))

	var result SourceTestResult
	if err := sonic.Unmarshal(resp.Body, &result); err != nil {
		a.log.Warnf("%s: test response is not a JSON envelope: %v", info.Endpoint, err)
		return &SourceTestResult{Success: false, Message: preview(strings.TrimSpace(string(resp.Body)))}, nil
	}
	return &result, nil
}

// ChatLogs queries chat messages of a source
func (a *API) ChatLogs(ctx context.Context, sourceID string, q ChatLogQuery) (Page[ChatLogRecord], error) {
	params := q.Params()
	params["source"] = sourceID
	resp, info, err := a.get(ctx, endpointChatLogs, params)
	if err != nil {
		return Page[ChatLogRecord]{}, err
	}
	page := decodePage[ChatLogRecord](a, info, a.normalizer.Normalize(info, resp.Body, ShapeMetaTotal))
	a.parser.ResolveTimestamps(page.Items)
	return page, nil
}

// ChatLogsRaw fetches the plaintext transcript of a source and parses it.
// A JSON body is decoded first and handed to the transcript parser as is.
func (a *API) ChatLogsRaw(ctx context.Context, sourceID string, q ChatLogQuery) ([]ChatLogRecord, error) {
	q.Format = "text"
	params := q.Params()
	params["source"] = sourceID
	resp, info, err := a.get(ctx, endpointChatLogs, params)
	if err != nil {
		return nil, err
	}
	a.log.Debugf("%s %s raw payload: %s", info.Method, info.Endpoint, preview(string(resp.Body)))

	if decoded, ok := decodeJSONBody(resp.Body); ok {
		return a.parser.ParseChatTranscript(decoded), nil
	}
	return a.parser.ParseChatTranscript(resp.Body), nil
}

// ExportChatLogs fetches the CSV export of a source's chat logs
func (a *API) ExportChatLogs(ctx context.Context, sourceID string, q ChatLogQuery) (*Table, error) {
	q.Format = "csv"
	params := q.Params()
	params["source"] = sourceID
	resp, info, err := a.get(ctx, endpointChatLogs, params)
	if err != nil {
		return nil, err
	}
	a.log.Debugf("%s %s csv payload: %s", info.Method, info.Endpoint, preview(string(resp.Body)))

	text, ok := a.textPayload(info, resp)
	if !ok {
		return NewTable(nil), nil
	}
	return NewTable(a.parser.ParseDelimitedTable(text)), nil
}

// Contacts lists one page of a source's contacts
func (a *API) Contacts(ctx context.Context, sourceID string, page, pageSize int) (Page[Contact], error) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	params := map[string]string{
		"source":   sourceID,
		"page":     strconv.Itoa(page),
		"pageSize": strconv.Itoa(pageSize),
	}
	resp, info, err := a.get(ctx, endpointContacts, params)
	if err != nil {
		return Page[Contact]{}, err
	}
	return decodePage[Contact](a, info, a.normalizer.Normalize(info, resp.Body, ShapePagedItems)), nil
}

// Sessions lists a source's sessions. Plaintext listings are parsed line by
// line; JSON envelopes are normalized.
func (a *API) Sessions(ctx context.Context, sourceID string) ([]SessionRecord, error) {
	resp, info, err := a.get(ctx, endpointSessions, map[string]string{"source": sourceID})
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON() {
		a.log.Debugf("%s %s plaintext payload: %s", info.Method, info.Endpoint, preview(string(resp.Body)))
		return a.parser.ParseSessionList(string(resp.Body)), nil
	}

	page := decodePage[SessionRecord](a, info, a.normalizer.Normalize(info, resp.Body, ShapeArray))
	for i := range page.Items {
		if page.Items[i].DisplayName == "" {
			page.Items[i].DisplayName = page.Items[i].Name
		}
	}
	return page.Items, nil
}

// textPayload returns the body as text. A JSON string body is unquoted; any
// other JSON value is the wrong shape for a text export.
func (a *API) textPayload(info RequestInfo, resp *Response) (string, bool) {
	decoded, ok := decodeJSONBody(resp.Body)
	if !ok {
		return string(resp.Body), true
	}
	if s, isString := decoded.(string); isString {
		return s, true
	}
	a.log.Warnf("%s %s: expected text, got %T", info.Method, info.Endpoint, decoded)
	return "", false
}

// decodePage converts a normalized response into typed records. Records that
// do not fit T leave the page empty rather than failing the call.
func decodePage[T any](a *API, info RequestInfo, resp NormalizedResponse) Page[T] {
	page, err := DecodeItems[T](resp)
	if err != nil {
		a.log.Warnf("%s %s: %v", info.Method, info.Endpoint, err)
		return Page[T]{Items: []T{}, Total: 0, Pagination: resp.Pagination}
	}
	return page
}

// decodeJSONBody decodes body when it looks like a JSON document
func decodeJSONBody(body []byte) (any, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, false
	}
	switch trimmed[0] {
	case '{', '[', '"':
	default:
		return nil, false
	}
	var v any
	if err := sonic.UnmarshalString(trimmed, &v); err != nil {
		return nil, false
	}
	return v, true
}
