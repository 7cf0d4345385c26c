package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for outbound requests.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for completed requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Counter holds one key's count in a snapshot.
type Counter struct {
	Key   string
	Count int64
}

// Snapshot returns request and error counters in stable key order.
func (m *Metrics) Snapshot() (requests, errs []Counter) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		requests = append(requests, Counter{Key: k, Count: v})
	}
	for k, v := range m.errorCount {
		errs = append(errs, Counter{Key: k, Count: v})
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Key < requests[j].Key })
	sort.Slice(errs, func(i, j int) bool { return errs[i].Key < errs[j].Key })
	return requests, errs
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
