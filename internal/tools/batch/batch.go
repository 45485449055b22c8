package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxItems bounds the ids accepted by one call.
const MaxItems = 10

// Result is the outcome of one id.
type Result struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter given as a single id, an array of
// ids or a string holding a JSON array. Numeric ids are accepted. Blank
// and repeated ids are rejected or dropped respectively.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var items []interface{}
	switch v := param.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		var list []interface{}
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &list) == nil {
			items = list
		} else {
			items = []interface{}{v}
		}
	case float64:
		items = []interface{}{v}
	case []interface{}:
		items = v
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}

	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for i, item := range items {
		id, err := itemString(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] %w", paramName, i, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	if len(result) > MaxItems {
		return nil, fmt.Errorf("%s accepts at most %d ids, got %d", paramName, MaxItems, len(result))
	}
	return result, nil
}

func itemString(item interface{}) (string, error) {
	switch v := item.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return "", fmt.Errorf("cannot be empty")
		}
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("must be a whole number")
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("must be a string")
	}
}

// FormatResults renders results as indented JSON.
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// ProcessBatch runs fn for every id, at most width at a time, and returns
// the results in input order. A failing id does not stop the others.
func ProcessBatch(ctx context.Context, ids []string, width int, fn func(ctx context.Context, id string) (json.RawMessage, error)) []Result {
	results := make([]Result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	if width > 0 {
		g.SetLimit(width)
	}
	for i, id := range ids {
		g.Go(func() error {
			res, err := fn(ctx, id)
			if err != nil {
				results[i] = NewErrorResult(id, err)
			} else {
				results[i] = NewSuccessResult(id, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// NewSuccessResult creates a success result. Invalid JSON is stored as a
// JSON string.
func NewSuccessResult(id string, result json.RawMessage) Result {
	if len(result) > 0 && !json.Valid(result) {
		result, _ = json.Marshal(string(result))
	}
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: result,
	}
}

// NewErrorResult creates an error result.
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
