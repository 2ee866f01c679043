package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/gatekeeper/internal/setup/config"
)

// ErrUnexpectedStatusCode is returned when Loki responds with an unexpected status code.
var ErrUnexpectedStatusCode = errors.New("unexpected status code from Loki")

// Pusher batches log lines and sends them to Loki.
// Delivery failures go to OnError rather than the logger that feeds the pusher.
type Pusher struct {
	config  config.Loki
	labels  map[string]string
	client  *http.Client
	pushURL string

	// OnError receives failed pushes and dropped entries. Must be set before use.
	OnError func(error)

	entry  chan logEntry
	quit   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	cancel context.CancelFunc
	batch  []streamValue
}

// NewPusher starts a pusher. Stop must be called to flush the last batch.
func NewPusher(ctx context.Context, cfg config.Loki, labels map[string]string, onError func(error)) *Pusher {
	ctx, cancel := context.WithCancel(ctx)

	batchSize := max(cfg.BatchMaxSize, 1)

	pusher := &Pusher{
		config:  cfg,
		labels:  labels,
		client:  &http.Client{Timeout: 10 * time.Second},
		pushURL: cfg.URL + "/loki/api/v1/push",
		OnError: onError,
		entry:   make(chan logEntry, batchSize*2),
		quit:    make(chan struct{}),
		cancel:  cancel,
		batch:   make([]streamValue, 0, batchSize),
	}

	pusher.wg.Add(1)

	go pusher.run(ctx, batchSize)

	return pusher
}

// AddEntry queues an entry, dropping it if the queue is full.
func (p *Pusher) AddEntry(entry logEntry) {
	select {
	case p.entry <- entry:
	default:
		p.OnError(errors.New("loki entry queue full, dropping log entry"))
	}
}

// Stop sends the pending batch and stops the pusher. It is safe to call twice.
func (p *Pusher) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.wg.Wait()
		p.cancel()
	})
}

func (p *Pusher) run(ctx context.Context, batchSize int) {
	defer p.wg.Done()

	wait := time.Duration(p.config.BatchMaxWaitMS) * time.Millisecond
	if wait <= 0 {
		wait = 5 * time.Second
	}

	ticker := time.NewTicker(wait)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			p.drain()
			p.flush(ctx)

			return
		case entry := <-p.entry:
			p.batch = append(p.batch, streamValue{strconv.FormatInt(entry.timestampNano, 10), entry.line})
			if len(p.batch) >= batchSize {
				p.flush(ctx)
			}
		case <-ticker.C:
			p.flush(ctx)
		}
	}
}

// drain moves queued entries into the batch without blocking.
func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entry:
			p.batch = append(p.batch, streamValue{strconv.FormatInt(entry.timestampNano, 10), entry.line})
		default:
			return
		}
	}
}

func (p *Pusher) flush(ctx context.Context) {
	if len(p.batch) == 0 {
		return
	}

	if err := p.send(ctx); err != nil {
		p.OnError(err)
	}

	p.batch = p.batch[:0]
}

// send transmits the current batch as one gzip-compressed stream.
func (p *Pusher) send(ctx context.Context) error {
	payload, err := sonic.Marshal(pushRequest{
		Streams: []stream{{Stream: p.labels, Values: p.batch}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.pushURL, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	return nil
}
