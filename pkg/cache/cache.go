package cache

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrKeyExists = errors.New("key already exists in cache")

// Cache is a weighted LRU cache. Inserting past the weight budget evicts the
// least recently used entries.
type Cache[K comparable, V any] interface {
	SetVerbose(verbose bool)
	GetWeight() int
	GetBudget() int
	Insert(key K, value V, weight int) error
	Retrieve(key K) (V, bool)
	Contains(key K) bool
	Len() int
	Clear()
}

type cacheNode[K comparable, V any] struct {
	next   *cacheNode[K, V]
	prev   *cacheNode[K, V]
	key    K
	value  V
	weight int
}

type cache[K comparable, V any] struct {
	log *logrus.Entry

	mutex   sync.Mutex
	head    *cacheNode[K, V]
	tail    *cacheNode[K, V]
	lookup  map[K]*cacheNode[K, V]
	weight  int
	budget  int
	verbose bool
}

// NewCache returns a cache that holds at most budget total weight.
func NewCache[K comparable, V any](budget int) Cache[K, V] {
	return &cache[K, V]{
		log:    logrus.StandardLogger().WithField("type", "cache"),
		lookup: make(map[K]*cacheNode[K, V]),
		budget: budget,
	}
}

// SetVerbose enables eviction logging.
func (c *cache[K, V]) SetVerbose(verbose bool) {
	c.mutex.Lock()
	c.verbose = verbose
	c.mutex.Unlock()
}

func (c *cache[K, V]) GetWeight() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.weight
}

func (c *cache[K, V]) GetBudget() int {
	return c.budget
}

// Insert adds a new entry at the front of the list. Existing keys are not
// replaced.
func (c *cache[K, V]) Insert(key K, value V, weight int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, found := c.lookup[key]; found {
		return ErrKeyExists
	}

	node := &cacheNode[K, V]{
		key:    key,
		value:  value,
		weight: weight,
	}
	c.pushFront(node)

	c.lookup[key] = node
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evicted := c.tail
		c.unlink(evicted)
		c.weight -= evicted.weight
		delete(c.lookup, evicted.key)

		if c.verbose {
			c.log.WithFields(logrus.Fields{
				"method":       "Insert",
				"key":          evicted.key,
				"weight":       evicted.weight,
				"spare_weight": c.budget - c.weight,
			}).Debug("cache eviction")
		}
	}

	return nil
}

// Retrieve returns the entry for key and marks it as most recently used.
func (c *cache[K, V]) Retrieve(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, found := c.lookup[key]
	if !found {
		var zero V
		return zero, false
	}

	if node != c.head {
		c.unlink(node)
		c.pushFront(node)
	}

	return node.value, true
}

// Contains reports whether key is cached without affecting recency.
func (c *cache[K, V]) Contains(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, found := c.lookup[key]
	return found
}

func (c *cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.lookup)
}

func (c *cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[K]*cacheNode[K, V])
	c.weight = 0
}

func (c *cache[K, V]) pushFront(node *cacheNode[K, V]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *cache[K, V]) unlink(node *cacheNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.next = nil
	node.prev = nil
}
