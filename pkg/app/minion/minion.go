// Package minion runs one worker per relay. A minion owns the connection
// to its relay, drains a job queue, and reports outcomes back to the
// overlord.
package minion

import (
	"net/http"
	"time"

	"github.com/crisdut/gossip/pkg/app/comms"
	"github.com/crisdut/gossip/pkg/protocol/ws"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
	"github.com/crisdut/gossip/pkg/utils/log"
)

// reconnect backoff bounds
const (
	minBackoff = time.Second
	maxBackoff = time.Minute
)

// M is a per-relay worker.
type M struct {
	URL string

	ctx         context.T
	cancel      context.F
	toOverlord  chan<- comms.ToOverlord
	jobs        chan comms.PublishJob
	httpClient  *http.Client
	publishWait time.Duration
	bytesRead   func(n int)
}

// New builds a minion for one relay. httpClient may be nil; when given it
// carries the SOCKS5 proxy underneath the websocket dial. bytesRead, when
// non-nil, receives the payload size of every message from the relay.
func New(
	ctx context.T, url string, toOverlord chan<- comms.ToOverlord,
	httpClient *http.Client, publishWait time.Duration, bytesRead func(n int),
) (m *M) {
	m = &M{
		URL:         url,
		toOverlord:  toOverlord,
		jobs:        make(chan comms.PublishJob, 16),
		httpClient:  httpClient,
		publishWait: publishWait,
		bytesRead:   bytesRead,
	}
	m.ctx, m.cancel = context.Cancel(ctx)
	return
}

// Submit queues a publish job without blocking. It reports false when the
// job was not accepted: the minion is stopping, or its queue is full
// because the relay has been unreachable. The overlord must never wait on
// one stuck minion while others have work pending.
func (m *M) Submit(job comms.PublishJob) (accepted bool) {
	if m.ctx.Err() != nil {
		return false
	}
	select {
	case m.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop tears the minion down; Run returns once the current job finishes.
func (m *M) Stop() { m.cancel() }

// Run connects to the relay and drains the job queue until the context is
// done, reconnecting with backoff on failure. It sends a MinionExited
// message when it returns.
func (m *M) Run() {
	defer func() {
		select {
		case m.toOverlord <- comms.MinionExited{URL: m.URL}:
		case <-time.After(time.Second):
		}
	}()
	backoff := minBackoff
	for {
		if m.ctx.Err() != nil {
			return
		}
		var opts []ws.Option
		if m.httpClient != nil {
			opts = append(opts, ws.WithHTTPClient{Client: m.httpClient})
		}
		client, err := ws.New(m.URL, opts...)
		if chk.E(err) {
			return
		}
		client.BytesRead = m.bytesRead
		dialCtx, cancel := context.Timeout(m.ctx, 30*time.Second)
		err = client.Connect(dialCtx)
		cancel()
		if err != nil {
			log.D.F("connect to %s failed, retrying in %v: %v", m.URL, backoff, err)
			select {
			case <-time.After(backoff):
			case <-m.ctx.Done():
				return
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		log.I.F("connected to %s", m.URL)
		backoff = minBackoff
		m.drain(client)
		chk.D(client.Close())
	}
}

// drain works jobs against one live connection until it drops or the
// minion stops.
func (m *M) drain(client *ws.Client) {
	for {
		select {
		case job := <-m.jobs:
			m.publish(client, job)
			if !client.IsConnected() {
				return
			}
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *M) publish(client *ws.Client, job comms.PublishJob) {
	ctx, cancel := context.Timeout(m.ctx, m.publishWait)
	err := client.Publish(ctx, job.Ev)
	cancel()
	result := comms.PublishResult{
		URL:     m.URL,
		EventID: job.Ev.IdString(),
		OK:      err == nil,
		At:      time.Now(),
	}
	if err != nil {
		result.Reason = err.Error()
	}
	select {
	case m.toOverlord <- result:
	case <-m.ctx.Done():
	}
}
