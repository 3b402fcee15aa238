package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Shape selects how the payload of a response envelope is read
type Shape int

const (
	// ShapeArray reads data as the record array; total is its length
	ShapeArray Shape = iota
	// ShapePagedItems reads data.items, data.total and data.pagination
	ShapePagedItems
	// ShapeMetaTotal reads data as the record array and meta.total
	ShapeMetaTotal
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapePagedItems:
		return "paged-items"
	case ShapeMetaTotal:
		return "meta-total"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// previewLength is how many characters of a raw payload are logged
const previewLength = 100

// RequestInfo identifies the call a payload came from, for logging
type RequestInfo struct {
	Method   string
	Endpoint string
}

// NormalizedResponse is the canonical form of every envelope. Data is never
// nil and Total is never negative.
type NormalizedResponse struct {
	Data       []any          `json:"data"`
	Total      int            `json:"total"`
	Pagination map[string]any `json:"pagination,omitempty"`
}

// Normalizer maps heterogeneous response envelopes to NormalizedResponse
type Normalizer struct {
	log Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(log Logger) *Normalizer {
	return &Normalizer{log: orNop(log)}
}

// Normalize decodes body and extracts its payload according to shape. It
// never fails: anything that is not a successful, well-formed envelope
// yields the defaults for shape.
func (n *Normalizer) Normalize(req RequestInfo, body []byte, shape Shape) NormalizedResponse {
	n.log.Debugf("%s %s [%s] payload: %s", req.Method, req.Endpoint, shape, preview(string(body)))

	var envelope any
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		n.log.Warnf("%s %s: response is not JSON: %v", req.Method, req.Endpoint, err)
		return emptyResponse(shape)
	}
	return n.normalize(req, envelope, shape)
}

// NormalizeValue is Normalize for an envelope that is already decoded
func (n *Normalizer) NormalizeValue(req RequestInfo, envelope any, shape Shape) NormalizedResponse {
	n.log.Debugf("%s %s [%s] payload: %s", req.Method, req.Endpoint, shape, preview(fmt.Sprint(envelope)))
	return n.normalize(req, envelope, shape)
}

func (n *Normalizer) normalize(req RequestInfo, envelope any, shape Shape) NormalizedResponse {
	obj, ok := envelope.(map[string]any)
	if !ok {
		n.log.Warnf("%s %s: envelope is %T, not an object", req.Method, req.Endpoint, envelope)
		return emptyResponse(shape)
	}
	if success, _ := obj["success"].(bool); !success {
		n.log.Debugf("%s %s: envelope not successful", req.Method, req.Endpoint)
		return emptyResponse(shape)
	}

	switch shape {
	case ShapeArray:
		data := n.asArray(req, obj["data"])
		return NormalizedResponse{Data: data, Total: len(data)}
	case ShapeMetaTotal:
		meta, _ := obj["meta"].(map[string]any)
		return NormalizedResponse{
			Data:  n.asArray(req, obj["data"]),
			Total: asTotal(meta["total"]),
		}
	case ShapePagedItems:
		payload, _ := obj["data"].(map[string]any)
		pagination, _ := payload["pagination"].(map[string]any)
		if pagination == nil {
			pagination = map[string]any{}
		}
		return NormalizedResponse{
			Data:       n.asArray(req, payload["items"]),
			Total:      asTotal(payload["total"]),
			Pagination: pagination,
		}
	default:
		n.log.Warnf("%s %s: unknown response shape %s", req.Method, req.Endpoint, shape)
		return emptyResponse(shape)
	}
}

func (n *Normalizer) asArray(req RequestInfo, v any) []any {
	switch arr := v.(type) {
	case []any:
		if arr == nil {
			return []any{}
		}
		return arr
	case nil:
		return []any{}
	default:
		n.log.Warnf("%s %s: payload is %T, expected an array", req.Method, req.Endpoint, v)
		return []any{}
	}
}

// asTotal reads a count; anything that is not a finite non-negative number
// becomes 0
func asTotal(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	// int(f) is undefined past the int range
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}

func emptyResponse(shape Shape) NormalizedResponse {
	resp := NormalizedResponse{Data: []any{}, Total: 0}
	if shape == ShapePagedItems {
		resp.Pagination = map[string]any{}
	}
	return resp
}

// preview returns the first previewLength characters of s
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength])
}

// DecodeItems converts the generic records of resp into T
func DecodeItems[T any](resp NormalizedResponse) (Page[T], error) {
	page := Page[T]{
		Items:      []T{},
		Total:      resp.Total,
		Pagination: resp.Pagination,
	}
	if len(resp.Data) == 0 {
		return page, nil
	}
	data, err := sonic.ConfigStd.Marshal(resp.Data)
	if err != nil {
		return page, fmt.Errorf("failed to encode records: %w", err)
	}
	var items []T
	if err := sonic.ConfigStd.Unmarshal(data, &items); err != nil {
		return page, fmt.Errorf("failed to decode records: %w", err)
	}
	if items != nil {
		page.Items = items
	}
	return page, nil
}
