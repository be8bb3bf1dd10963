package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"golang.org/x/sync/errgroup"

	"github.com/luca-patrignani/splitshot/config"
	"github.com/luca-patrignani/splitshot/coordinator"
	"github.com/luca-patrignani/splitshot/discovery"
	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/membership"
	"github.com/luca-patrignani/splitshot/network"
	"github.com/luca-patrignani/splitshot/player"
)

func main() {
	if len(os.Args) == 4 && os.Args[1] == "cert" {
		if err := writeCert(os.Args[2], os.Args[3]); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		return
	}
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <ip>\n       %s cert <ip:port> <dir>\n", os.Args[0], os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	// Create a new slog handler with the PTerm logger at the configured level
	handler := pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(ptermLevel(cfg.Level())))
	logger := slog.New(handler)
	slog.SetDefault(logger)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Split", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("shot", pterm.FgDarkGray.ToStyle()),
	).Render()

	name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your username").WithDefaultValue("player").Show()
	pterm.Println()
	pterm.Info.Printfln("Your username: %s", name)

	if err := run(cfg, logger, os.Args[1], name); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("splitshot stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, ip string, name string) error {
	l, err := net.Listen("tcp", ip+":0")
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ip, err)
	}
	addr := l.Addr().String()
	pterm.Info.Println("Listening on " + addr)
	if tcp, ok := l.(*net.TCPListener); ok {
		if subnet, err := subnetOfListener(tcp); err == nil {
			logger.Debug("listener subnet", "subnet", subnet.String())
		}
	}

	busOpts := []network.PeerOption{
		network.WithTimeout(cfg.SendTimeout),
		network.WithLogger(logger),
	}
	if cfg.TLS() {
		tlsOpts, err := tlsOptions(cfg)
		if err != nil {
			return err
		}
		busOpts = append(busOpts, tlsOpts...)
	}
	bus := network.NewPeer(addr, busOpts...)
	bus.Start(l)
	defer bus.Close()

	names := newRoster()
	self := names.set(addr, name)
	ui := &console{self: self, names: names}

	var decider coordinator.Decider = player.NewRandom(cfg.EndBeamOdds)
	if !cfg.AutoPlay {
		decider = ui
	}
	node := coordinator.NewNode(addr, bus, decider,
		coordinator.WithLogger(logger),
		coordinator.WithRules(cfg.Rules()),
		coordinator.WithDecisionTimeout(cfg.DecisionTimeout),
		coordinator.WithPendingTimeout(cfg.PendingTimeout),
		coordinator.WithPresenter(ui),
	)
	ui.node = node

	info, err := json.Marshal(announcement{Addr: addr, Name: name})
	if err != nil {
		return err
	}
	d := &discovery.Discover{
		Info:                         info,
		Port:                         cfg.DiscoveryPort,
		IntervalBetweenAnnouncements: cfg.AnnounceInterval,
		Logger:                       logger,
	}
	if err := d.Start(); err != nil {
		return fmt.Errorf("start discovery: %w", err)
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return node.Run(ctx)
	})
	g.Go(func() error {
		watcher := discovery.NewWatcher(cfg.PeerLease)
		return watcher.Run(ctx, d.Entries,
			func(info string) { onAnnouncement(ctx, logger, names, info, node.Join) },
			func(info string) { onAnnouncement(ctx, logger, names, info, node.Leave) },
		)
	})
	g.Go(func() error {
		if cfg.AutoPlay {
			return autoOpen(ctx, node, player.NewRandom(cfg.EndBeamOdds))
		}
		return ui.loop(ctx, addr)
	})
	return g.Wait()
}

// announcement is the payload of the discovery packets.
type announcement struct {
	Addr string `json:"addr"`
	Name string `json:"name"`
}

func onAnnouncement(ctx context.Context, logger *slog.Logger, names *roster, info string, apply func(context.Context, string) error) {
	var a announcement
	if err := json.Unmarshal([]byte(info), &a); err != nil || a.Addr == "" {
		logger.Warn("ignoring malformed announcement", "info", info)
		return
	}
	names.set(a.Addr, a.Name)
	if err := apply(ctx, a.Addr); err != nil {
		logger.Debug("membership change not applied", "addr", a.Addr, "err", err)
	}
}

// roster maps peers to the names they announced.
type roster struct {
	mu    sync.RWMutex
	names map[membership.PeerID]string
}

func newRoster() *roster {
	return &roster{names: make(map[membership.PeerID]string)}
}

func (r *roster) set(addr, name string) membership.PeerID {
	id := membership.PeerIDFromAddress(addr)
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" {
		r.names[id] = name
	}
	return id
}

func (r *roster) name(id shot.PeerID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.names[id]; ok {
		return fmt.Sprintf("%s (%s)", n, id)
	}
	return string(id)
}

func tlsOptions(cfg config.Config) ([]network.PeerOption, error) {
	cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("load TLS key pair: %w", err)
	}
	pool, err := network.LoadCertPool(cfg.TLSCA)
	if err != nil {
		return nil, fmt.Errorf("load TLS CA bundle: %w", err)
	}
	return []network.PeerOption{network.WithCertificate(cert), network.WithLimitedCAs(pool)}, nil
}

// writeCert generates a self-signed certificate for address into dir.
func writeCert(address, dir string) error {
	_, certPEM, keyPEM, err := network.GenerateSelfSignedCert(address)
	if err != nil {
		return err
	}
	certPath := filepath.Join(dir, "cert.pem")
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "key.pem"), keyPEM, 0o600); err != nil {
		return err
	}
	pterm.Success.Printfln("Certificate written to %s; add it to the CA bundle of every player", certPath)
	return nil
}

func ptermLevel(l slog.Level) pterm.LogLevel {
	switch {
	case l <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case l <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case l <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}
