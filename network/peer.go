package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	inboxSize   = 64
	seenSize    = 1024
	retryPeriod = 50 * time.Millisecond
	maxBodySize = 1 << 20
)

var ErrClosed = errors.New("peer is closed")

// Peer is a node of the broadcast bus. Addr is the address other peers use to
// reach it.
type Peer struct {
	Addr      string
	mu        sync.RWMutex
	addresses map[string]struct{}
	server    *http.Server
	client    *http.Client
	tlsConfig *tls.Config
	timeout   time.Duration
	log       *slog.Logger
	inbox     chan Envelope
	seen      *seenSet
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPeer creates a peer reachable at addr. Call Start to serve.
func NewPeer(addr string, opts ...PeerOption) *Peer {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Peer{
		Addr:      addr,
		addresses: make(map[string]struct{}),
		client:    &http.Client{},
		timeout:   30 * time.Second,
		log:       slog.Default(),
		inbox:     make(chan Envelope, inboxSize),
		seen:      newSeenSet(seenSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	p.server = &http.Server{Addr: addr, Handler: p}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start serves incoming envelopes on l until Close.
func (p *Peer) Start(l net.Listener) {
	if p.tlsConfig != nil {
		l = tls.NewListener(l, p.tlsConfig)
	}
	go func() {
		err := p.server.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error("bus server stopped", "addr", p.Addr, "err", err)
		}
	}()
}

// Close stops the server and abandons the deliveries still in flight.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.cancel()
		err = p.server.Shutdown(context.Background())
	})
	return err
}

// Inbox delivers every envelope received by p, its own broadcasts included.
func (p *Peer) Inbox() <-chan Envelope {
	return p.inbox
}

func (p *Peer) AddPeer(addr string) {
	if addr == p.Addr {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses[addr] = struct{}{}
}

func (p *Peer) RemovePeer(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.addresses, addr)
}

// Addresses returns the sorted remote addresses known to p.
func (p *Peer) Addresses() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	addrs := make([]string, 0, len(p.addresses))
	for a := range p.addresses {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)
	return addrs
}

// Broadcast sends e to every known peer and to p itself. It does not wait for
// delivery: failures are logged once the retries for an address run out.
func (p *Peer) Broadcast(ctx context.Context, e Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	p.seen.add(e.ID)
	go p.deliver(e)
	for _, addr := range p.Addresses() {
		go func() {
			if err := p.post(addr, body); err != nil {
				p.log.Warn("delivery failed", "to", addr, "kind", e.Kind, "err", err)
			}
		}()
	}
	return nil
}

// post sends body to addr, retrying until it is accepted or the timeout
// expires.
func (p *Peer) post(addr string, body []byte) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	url := p.scheme() + addr
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := p.client.Do(req)
		if err == nil {
			status := resp.StatusCode
			_ = resp.Body.Close()
			if status == http.StatusAccepted {
				return nil
			}
			err = fmt.Errorf("status code %d", status)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connection attempts timed out with error %w", err)
		case <-time.After(retryPeriod):
		}
	}
}

func (p *Peer) scheme() string {
	if p.tlsConfig != nil {
		return "https://"
	}
	return "http://"
}

func (p *Peer) deliver(e Envelope) {
	select {
	case p.inbox <- e:
	case <-p.ctx.Done():
	}
}

func (p *Peer) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil || e.ID == uuid.Nil {
		p.log.Warn("dropping malformed envelope", "remote", req.RemoteAddr, "err", err)
		rw.WriteHeader(http.StatusBadRequest)
		return
	}
	if p.seen.add(e.ID) {
		p.deliver(e)
	}
	rw.WriteHeader(http.StatusAccepted)
}

// seenSet remembers the most recent envelope IDs.
type seenSet struct {
	mu    sync.Mutex
	ids   map[uuid.UUID]struct{}
	order []uuid.UUID
	size  int
}

func newSeenSet(size int) *seenSet {
	return &seenSet{ids: make(map[uuid.UUID]struct{}, size), size: size}
}

// add records id and reports whether it was new.
func (s *seenSet) add(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	if len(s.order) == s.size {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// CreateListeners opens n listeners on localhost and returns them with their
// addresses.
func CreateListeners(n int) ([]net.Listener, []string) {
	listeners := make([]net.Listener, n)
	addresses := make([]string, n)
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			panic(err)
		}
		listeners[i] = l
		addresses[i] = l.Addr().String()
	}
	return listeners, addresses
}
