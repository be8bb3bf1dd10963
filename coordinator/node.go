package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/election"
	"github.com/luca-patrignani/splitshot/ledger"
	"github.com/luca-patrignani/splitshot/membership"
)

var ErrStopped = errors.New("node is not running")

// Snapshot is a consistent view of a Node.
type Snapshot struct {
	Self       membership.PeerID
	Peers      []membership.PeerID
	View       map[membership.PeerID]string
	Starter    membership.PeerID
	InProgress bool
	Tree       shot.Branch
	Status     shot.Status
}

// Node is the single actor of a peer. All of its state is owned by the
// goroutine executing Run.
type Node struct {
	tracker   *membership.Tracker
	engine    *election.Engine
	exchange  *shot.Exchange
	bus       Bus
	decider   Decider
	presenter Presenter
	ledger    Ledger
	log       *slog.Logger

	decisionTimeout time.Duration
	pendingTimeout  time.Duration
	engineOpts      []election.Option

	exchangeID uuid.UUID
	awaiting   map[shot.MessageID]awaited
	ended      map[uuid.UUID]struct{}

	events chan Event
	done   chan struct{}
}

// awaited is an event of the open exchange waiting for its reply.
type awaited struct {
	kind   shot.EventKind
	target membership.PeerID
	timer  *time.Timer
}

type Option func(*Node)

// WithRules sets the rules of the exchanges. The starting player is always
// the elected one.
func WithRules(r shot.Rules) Option {
	return func(n *Node) {
		n.exchange = shot.NewExchange(r)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(n *Node) {
		n.log = log
	}
}

func WithPresenter(p Presenter) Option {
	return func(n *Node) {
		n.presenter = p
	}
}

func WithLedger(l Ledger) Option {
	return func(n *Node) {
		n.ledger = l
	}
}

// WithDecisionTimeout bounds each call to the Decider. Zero means no bound.
func WithDecisionTimeout(d time.Duration) Option {
	return func(n *Node) {
		n.decisionTimeout = d
	}
}

// WithPendingTimeout resolves as Missed the events of an open exchange that
// received no reply within d. Zero waits forever.
func WithPendingTimeout(d time.Duration) Option {
	return func(n *Node) {
		n.pendingTimeout = d
	}
}

// WithElectionOptions configures the election engine.
func WithElectionOptions(opts ...election.Option) Option {
	return func(n *Node) {
		n.engineOpts = append(n.engineOpts, opts...)
	}
}

// NewNode creates the node of the peer listening at selfAddr.
func NewNode(selfAddr string, bus Bus, decider Decider, opts ...Option) *Node {
	n := &Node{
		tracker:  membership.NewTracker(selfAddr),
		exchange: shot.NewExchange(shot.DefaultRules()),
		bus:      bus,
		decider:  decider,
		ledger:   ledger.NewBlockchain(),
		log:      slog.Default(),
		awaiting: make(map[shot.MessageID]awaited),
		ended:    make(map[uuid.UUID]struct{}),
		events:   make(chan Event),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.log = n.log.With("peer", n.tracker.Self())
	if n.presenter == nil {
		n.presenter = logPresenter(n.log)
	}
	n.engine = election.NewEngine(n.tracker.Self(), n.tracker.Peers,
		append([]election.Option{election.WithLogger(n.log)}, n.engineOpts...)...)
	n.engine.OnWinner(election.KindStarter, n.onStarter)
	return n
}

func (n *Node) Self() membership.PeerID {
	return n.tracker.Self()
}

// Run processes events until ctx is done. It must be called once.
func (n *Node) Run(ctx context.Context) error {
	defer close(n.done)
	defer n.stopTimers()
	n.startElection(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-n.bus.Inbox():
			if !ok {
				return nil
			}
			if !env.For(string(n.Self())) {
				continue
			}
			ev, err := decode(env)
			if err != nil {
				n.log.Warn("dropping envelope", "err", err)
				continue
			}
			n.handle(ctx, ev)
		case ev := <-n.events:
			n.handle(ctx, ev)
		}
	}
}

// Join reports a peer reachable at addr.
func (n *Node) Join(ctx context.Context, addr string) error {
	return n.post(ctx, Join{Addr: addr})
}

// Leave reports that the peer at addr is gone.
func (n *Node) Leave(ctx context.Context, addr string) error {
	return n.post(ctx, Leave{Addr: addr})
}

// Open starts an exchange by shooting move at target. Only the elected
// starter may open, and only while no exchange of its own is in progress.
func (n *Node) Open(ctx context.Context, target membership.PeerID, move shot.Move) error {
	reply := make(chan error, 1)
	if err := n.post(ctx, openRequest{target: target, move: move, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current state of the node.
func (n *Node) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := n.post(ctx, snapshotRequest{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (n *Node) post(ctx context.Context, ev Event) error {
	select {
	case n.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.done:
		return ErrStopped
	}
}

func (n *Node) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case Join:
		if _, added := n.tracker.Join(ev.Addr); added {
			n.bus.AddPeer(ev.Addr)
			n.startElection(ctx)
		}
	case Leave:
		if _, removed := n.tracker.Leave(ev.Addr); removed {
			n.bus.RemovePeer(ev.Addr)
			n.startElection(ctx)
		}
	case RollVote:
		n.engine.Receive(ev.Vote)
	case Shot:
		n.answer(ctx, ev.Event, func(r Reply) Event { return ReplyShot{Reply: r} })
	case Won:
		n.answer(ctx, ev.Event, func(r Reply) Event { return ReplyWon{Reply: r} })
	case ReplyShot:
		n.resolve(ctx, shot.EventShot, ev.Reply)
	case ReplyWon:
		n.resolve(ctx, shot.EventWon, ev.Reply)
	case pendingExpired:
		if a, ok := n.awaiting[ev.id]; ok {
			n.log.Warn("no reply in time, counting as missed", "id", ev.id, "target", a.target)
			n.resolve(ctx, a.kind, Reply{ID: ev.id, Decision: shot.Missed(), Sender: a.target})
		}
	case GameEnd:
		n.gameEnd(ev)
	case openRequest:
		ev.reply <- n.open(ctx, ev.target, ev.move)
	case snapshotRequest:
		ev.reply <- n.snapshot()
	default:
		n.log.Error("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
}

// startElection starts a round of every tracked election kind.
func (n *Node) startElection(ctx context.Context) {
	for _, k := range n.engine.Kinds() {
		n.send(ctx, "", RollVote{Vote: n.engine.StartRound(k)})
	}
}

func (n *Node) onStarter(winner membership.PeerID) {
	n.exchange.SetStartingPlayer(winner)
	peers := n.tracker.Peers()
	votes := n.engine.Votes(election.KindStarter, election.NewRollID(peers))
	lv := make([]ledger.Vote, 0, len(peers))
	for _, p := range peers {
		lv = append(lv, ledger.Vote{VoterID: string(p), Value: strconv.FormatUint(votes[p], 10)})
	}
	if _, err := n.ledger.Append(ledger.KindStarter, string(winner), map[string]membership.PeerID{"starter": winner}, lv, len(peers)); err != nil {
		n.log.Error("recording starter", "err", err)
	}
}

func (n *Node) open(ctx context.Context, target membership.PeerID, move shot.Move) error {
	ev, err := n.exchange.Open(n.Self(), target, move, n.tracker.Peers())
	if err != nil {
		return fmt.Errorf("open exchange: %w", err)
	}
	n.exchangeID = uuid.New()
	n.log.Info("exchange opened", "exchange", n.exchangeID, "target", target)
	n.dispatch(ctx, ev)
	return nil
}

// dispatch broadcasts an event of the open exchange and waits for its reply.
func (n *Node) dispatch(ctx context.Context, ev shot.Event) {
	a := awaited{kind: ev.Kind, target: ev.Target}
	if n.pendingTimeout > 0 {
		id := ev.ID
		a.timer = time.AfterFunc(n.pendingTimeout, func() {
			select {
			case n.events <- pendingExpired{id: id}:
			case <-n.done:
			}
		})
	}
	n.awaiting[ev.ID] = a
	if ev.Kind == shot.EventShot {
		n.send(ctx, ev.Target, Shot{Event: ev})
	} else {
		n.send(ctx, ev.Target, Won{Event: ev})
	}
}

// answer runs the decider on an event addressed to the local peer and sends
// the reply to the owner of the exchange.
func (n *Node) answer(ctx context.Context, ev shot.Event, wrap func(Reply) Event) {
	if ev.Target != n.Self() {
		return
	}
	d := n.decide(ctx, ev)
	n.send(ctx, ev.Owner, wrap(Reply{ID: ev.ID, Decision: d}))
}

func (n *Node) resolve(ctx context.Context, kind shot.EventKind, r Reply) {
	a, ok := n.awaiting[r.ID]
	if !ok || a.kind != kind {
		n.log.Debug("ignoring stale reply", "id", r.ID, "from", r.Sender)
		return
	}
	if r.Sender != a.target {
		n.log.Warn("ignoring reply from wrong peer", "id", r.ID, "from", r.Sender, "expected", a.target)
		return
	}
	events, ok := n.exchange.Resolve(r.ID, r.Decision)
	if !ok {
		n.log.Debug("ignoring stale reply", "id", r.ID, "from", r.Sender)
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	delete(n.awaiting, r.ID)
	// a shot past the budget is closed as missed before anyone sees it
	if status := n.exchange.Status(); status.Ended {
		n.finish(ctx)
		return
	}
	for _, ev := range events {
		n.dispatch(ctx, ev)
	}
}

func (n *Node) finish(ctx context.Context) {
	n.stopTimers()
	res := n.exchange.Close()
	n.send(ctx, "", GameEnd{ExchangeID: n.exchangeID, Result: res})
}

func (n *Node) gameEnd(g GameEnd) {
	if _, seen := n.ended[g.ExchangeID]; seen {
		return
	}
	n.ended[g.ExchangeID] = struct{}{}
	n.presenter.Present(g.Result)
	extra := map[string]string{"exchange": g.ExchangeID.String()}
	if _, err := n.ledger.Append(ledger.KindExchange, string(g.Result.Owner), g.Result, nil, 0, extra); err != nil {
		n.log.Error("recording exchange", "exchange", g.ExchangeID, "err", err)
	}
}

func (n *Node) send(ctx context.Context, target membership.PeerID, ev Event) {
	env, err := encode(n.Self(), target, ev)
	if err != nil {
		n.log.Error("encoding event", "err", err)
		return
	}
	if err := n.bus.Broadcast(ctx, env); err != nil {
		n.log.Error("broadcast failed", "kind", env.Kind, "err", err)
	}
}

func (n *Node) stopTimers() {
	for id, a := range n.awaiting {
		if a.timer != nil {
			a.timer.Stop()
		}
		delete(n.awaiting, id)
	}
}

func (n *Node) snapshot() Snapshot {
	starter, _ := n.engine.Winner(election.KindStarter)
	return Snapshot{
		Self:       n.Self(),
		Peers:      n.tracker.Peers(),
		View:       n.tracker.View(),
		Starter:    starter,
		InProgress: n.exchange.InProgress(),
		Tree:       n.exchange.Tree(),
		Status:     n.exchange.Status(),
	}
}
