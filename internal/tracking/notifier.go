package tracking

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/utils"
	"github.com/MrSnakeDoc/linkjump/internal/version"
)

// HeaderEventID carries a unique id per click so the receiver can deduplicate retries.
const HeaderEventID = "X-Click-Event-ID"

// Notifier sends click notifications in the background.
// TrackClick never blocks the caller and failures are only logged.
type Notifier struct {
	client  *http.Client
	timeout time.Duration
	log     logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	sent   atomic.Int64
	failed atomic.Int64
}

// NewNotifier creates a notifier whose requests give up after timeout.
func NewNotifier(timeout time.Duration, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{
		timeout: timeout,
		log:     log,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 0,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
				DisableKeepAlives:   true,
			},
		},
	}
}

// TrackClick implements domain.ClickTracker.
func (n *Notifier) TrackClick(rawURL string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		if err := n.send(rawURL); err != nil {
			n.failed.Add(1)
			n.log.Debug("click notification failed", logger.Error(err))
			return
		}
		n.sent.Add(1)
	}()
}

func (n *Notifier) send(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid tracking url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(HeaderEventID, uuid.NewString())
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send click: %w", err)
	}
	defer utils.Close(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("click endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Stats returns the number of delivered and failed notifications so far.
func (n *Notifier) Stats() (sent, failed int64) {
	return n.sent.Load(), n.failed.Load()
}

// Wait blocks until every notification in flight has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Close stops accepting new clicks and waits for the ones in flight,
// giving up when ctx is done.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.client.CloseIdleConnections()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
