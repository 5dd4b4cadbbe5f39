package stats

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxCount = 10
	window          = 24 * time.Hour
	hourLayout      = "2006010215"
)

//nolint:gochecknoglobals
var now = time.Now

// Item is one aggregated key with its count
type Item struct {
	Key   string
	Count int
}

// Aggregator counts keys in hourly buckets over the last 24 hours
type Aggregator struct {
	Name string

	lock        sync.Mutex
	maxCount    int
	currentHour string
	current     map[string]int
	// hour -> (key -> count)
	closed map[string]map[string]int
}

// NewAggregator returns new aggregator with specified name
func NewAggregator(name string) *Aggregator {
	return NewAggregatorWithMax(name, defaultMaxCount)
}

// NewAggregatorWithMax returns new aggregator which keeps at most maxCount keys in its result
func NewAggregatorWithMax(name string, maxCount uint) *Aggregator {
	return &Aggregator{
		Name:        name,
		maxCount:    int(maxCount),
		currentHour: now().Format(hourLayout),
		current:     make(map[string]int),
		closed:      make(map[string]map[string]int),
	}
}

// Put counts the key in the current hour, blank keys are ignored
func (a *Aggregator) Put(key string) {
	key = strings.TrimSpace(key)
	if len(key) == 0 {
		return
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	a.switchHour()

	a.current[key]++
}

// Top returns the keys with the highest counts of the last 24 hours, highest first.
// The running hour is not included.
func (a *Aggregator) Top() []Item {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.switchHour()

	sum := make(map[string]int)

	for _, bucket := range a.closed {
		for k, v := range bucket {
			sum[k] += v
		}
	}

	return topEntries(sum, a.maxCount)
}

func (a *Aggregator) switchHour() {
	hour := now().Format(hourLayout)
	if hour == a.currentHour {
		return
	}

	// keep twice as many keys per bucket, so the sum over all buckets stays accurate enough
	bucket := make(map[string]int)
	for _, e := range topEntries(a.current, a.maxCount*2) {
		bucket[e.Key] = e.Count
	}

	a.closed[a.currentHour] = bucket

	for k := range a.closed {
		h, _ := time.ParseInLocation(hourLayout, k, now().Location())

		if h.Before(now().Add(-window)) {
			delete(a.closed, k)
		}
	}

	a.currentHour = hour
	a.current = make(map[string]int)
}

func topEntries(in map[string]int, maxCount int) []Item {
	res := make([]Item, 0, len(in))

	for k, v := range in {
		res = append(res, Item{Key: k, Count: v})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Count == res[j].Count {
			return res[i].Key < res[j].Key
		}

		return res[i].Count > res[j].Count
	})

	if len(res) > maxCount {
		res = res[:maxCount]
	}

	return res
}
