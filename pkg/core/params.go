package core

import (
	"fmt"
	"maps"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
)

// Params is a mapping from parameter name to value, built fresh per call.
// Values may be literals or deferred producers resolved at build time.
type Params map[string]any

// DeferredValue is a late-bound parameter value. It is resolved exactly once,
// at request build time, immediately before serialization. Typical use is a
// timestamp that must reflect the moment the request is constructed.
type DeferredValue func() any

// Deferred wraps a zero-argument producer as a late-bound parameter value.
func Deferred(fn func() any) DeferredValue {
	return DeferredValue(fn)
}

// Set stores a parameter and returns the map for chaining.
func (p Params) Set(key string, value any) Params {
	p[key] = value
	return p
}

// Merge copies all entries from other into p and returns p for chaining.
func (p Params) Merge(other Params) Params {
	maps.Copy(p, other)
	return p
}

// Resolve returns a copy of p with every deferred value evaluated.
// The original map is not modified.
func (p Params) Resolve() Params {
	resolved := make(Params, len(p))
	for k, v := range p {
		if d, ok := v.(DeferredValue); ok {
			resolved[k] = d()
			continue
		}
		resolved[k] = v
	}
	return resolved
}

// SortedKeys returns the parameter names sorted lexicographically.
// Sorting makes encoded output deterministic and signatures reproducible.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders a single parameter value as its wire string.
// Decimal values keep their exact text representation, never a float round trip.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case apd.Decimal:
		return val.Text('f')
	case *apd.Decimal:
		return val.Text('f')
	default:
		return fmt.Sprintf("%v", val)
	}
}

// EncodeQuery serializes parameters as an URL-encoded query string with keys
// sorted lexicographically. Array values follow the given serialization mode.
func EncodeQuery(p Params, mode ArraySerialization) string {
	if len(p) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, key := range p.SortedKeys() {
		for _, pair := range encodePairs(key, p[key], mode) {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(pair)
		}
	}
	return sb.String()
}

// ToStringMap renders every parameter value, preserving no particular order.
func (p Params) ToStringMap() map[string]string {
	result := make(map[string]string, len(p))
	for k, v := range p {
		result[k] = FormatValue(v)
	}
	return result
}

func encodePairs(key string, value any, mode ArraySerialization) []string {
	values, isArray := arrayValues(value)
	if !isArray {
		return []string{url.QueryEscape(key) + "=" + url.QueryEscape(FormatValue(value))}
	}

	switch mode {
	case ArrayCSV:
		return []string{url.QueryEscape(key) + "=" + url.QueryEscape(strings.Join(values, ","))}
	case ArrayJSON:
		data, err := sonic.Marshal(value)
		if err != nil {
			data = []byte("[]")
		}
		return []string{url.QueryEscape(key) + "=" + url.QueryEscape(string(data))}
	default:
		pairs := make([]string, 0, len(values))
		for _, v := range values {
			pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(v))
		}
		return pairs
	}
}

func arrayValues(value any) ([]string, bool) {
	switch vs := value.(type) {
	case []string:
		return vs, true
	case []any:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = FormatValue(v)
		}
		return out, true
	case []int:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.Itoa(v)
		}
		return out, true
	case []int64:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.FormatInt(v, 10)
		}
		return out, true
	case []float64:
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		return out, true
	default:
		return nil, false
	}
}
