package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/wordcount/document"
	"github.com/tailored-agentic-units/wordcount/wordcount"
)

const (
	ServiceName    = "wordcount.v1.WordCountService"
	CountProcedure = "/" + ServiceName + "/Count"
)

// Counter runs one word-count job. *engine.Engine implements it.
type Counter interface {
	Count(ctx context.Context, urls ...string) (wordcount.JobResult, error)
}

// NewHandler returns the service path prefix and its handler, ready to
// mount on an http.ServeMux.
func NewHandler(counter Counter, opts ...connect.HandlerOption) (string, http.Handler) {
	h := &handler{counter: counter}

	mux := http.NewServeMux()
	mux.Handle(CountProcedure, connect.NewUnaryHandler(CountProcedure, h.count, opts...))
	return "/" + ServiceName + "/", mux
}

type handler struct {
	counter Counter
}

func (h *handler) count(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	urls, top, err := decodeRequest(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := h.counter.Count(ctx, urls...)
	if err != nil {
		return nil, connect.NewError(errorCode(err), err)
	}

	msg, err := EncodeResult(result, top)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func decodeRequest(msg *structpb.Struct) ([]string, int, error) {
	fields := msg.GetFields()

	var urls []string
	if v, ok := fields["urls"]; ok {
		list := v.GetListValue()
		if list == nil {
			return nil, 0, errors.New("urls must be a list of strings")
		}
		for i, item := range list.GetValues() {
			s, ok := item.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, 0, fmt.Errorf("urls[%d] must be a string", i)
			}
			urls = append(urls, s.StringValue)
		}
	}

	top := 0
	if v, ok := fields["top"]; ok {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue < 0 {
			return nil, 0, errors.New("top must be a non-negative number")
		}
		top = int(n.NumberValue)
	}

	return urls, top, nil
}

// EncodeResult converts a JobResult to the wire Struct. Documents keep
// batch order; top > 0 adds the most frequent words under "top".
func EncodeResult(result wordcount.JobResult, top int) (*structpb.Struct, error) {
	documents := make([]any, 0, len(result.Documents))
	statuses := make(map[string]any, len(result.Statuses))
	for _, id := range result.Documents {
		documents = append(documents, id.String())
		statuses[id.String()] = result.Statuses[id].String()
	}

	failures := make(map[string]any, len(result.Errors))
	for id, reason := range result.Errors {
		failures[id.String()] = reason
	}

	counts := make(map[string]any, len(result.Counts))
	for word, n := range result.Counts {
		counts[word] = n
	}

	fields := map[string]any{
		"documents":   documents,
		"counts":      counts,
		"statuses":    statuses,
		"errors":      failures,
		"total":       result.Counts.Total(),
		"duration_ms": result.Duration.Milliseconds(),
	}

	if top > 0 {
		ranked := make([]any, 0, top)
		for _, wc := range result.Counts.Top(top) {
			ranked = append(ranked, map[string]any{"word": wc.Word, "count": wc.Count})
		}
		fields["top"] = ranked
	}

	return structpb.NewStruct(fields)
}

// DecodeCounts reads the counts map back out of a response Struct.
func DecodeCounts(msg *structpb.Struct) document.Frequencies {
	counts := make(document.Frequencies)
	for word, v := range msg.GetFields()["counts"].GetStructValue().GetFields() {
		counts[word] = int(v.GetNumberValue())
	}
	return counts
}

// DecodeStatuses reads the per-document statuses in batch order.
func DecodeStatuses(msg *structpb.Struct) []DocumentStatus {
	fields := msg.GetFields()
	statuses := fields["statuses"].GetStructValue().GetFields()
	failures := fields["errors"].GetStructValue().GetFields()

	var out []DocumentStatus
	for _, v := range fields["documents"].GetListValue().GetValues() {
		url := v.GetStringValue()
		out = append(out, DocumentStatus{
			URL:    url,
			Status: statuses[url].GetStringValue(),
			Error:  failures[url].GetStringValue(),
		})
	}
	return out
}

type DocumentStatus struct {
	URL    string
	Status string
	Error  string
}

func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, document.ErrInvalidIdentity):
		return connect.CodeInvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}

// NewCountRequest builds a request Struct.
func NewCountRequest(urls []string, top int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"urls": stringsToAny(urls),
		"top":  top,
	})
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
