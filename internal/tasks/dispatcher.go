// Package tasks sends fire-and-forget work to an external task endpoint.
// Delivery is best effort: the caller never observes the outcome, and
// failures are only logged.
package tasks

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// Dispatcher queues payloads and POSTs them to a fixed URL from a
// background worker.
type Dispatcher struct {
	url    string
	client *http.Client
	queue  chan map[string]string
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher starts the worker goroutine. An empty url disables
// dispatch entirely; Enqueue becomes a no-op.
func NewDispatcher(url string, queueSize int) *Dispatcher {
	d := &Dispatcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		queue:  make(chan map[string]string, queueSize),
	}
	if url != "" {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Enqueue submits a payload without blocking. When the queue is full the
// payload is dropped; the contract owes no delivery guarantee.
func (d *Dispatcher) Enqueue(params map[string]string) {
	if d.url == "" {
		return
	}
	select {
	case d.queue <- params:
	default:
		log.Printf("task queue full, dropping payload for %s", d.url)
	}
}

// Close stops the worker after draining queued payloads.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	if d.url != "" {
		d.wg.Wait()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for params := range d.queue {
		body, err := json.Marshal(params)
		if err != nil {
			log.Printf("task payload marshal: %v", err)
			continue
		}
		resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("task dispatch to %s: %v", d.url, err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			log.Printf("task dispatch to %s: status %d", d.url, resp.StatusCode)
		}
	}
}
