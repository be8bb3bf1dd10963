package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
)

const (
	multicastIpAddress = "239.0.0.1"
	keySize            = 16
	maxPacketSize      = 1024
)

// Discover announces Info and listens for the announcements of the other
// instances. Configure Info, Port and IntervalBetweenAnnouncements before
// calling Start; afterwards entries arrive on Entries.
type Discover struct {
	Info                         []byte
	Port                         uint16
	IntervalBetweenAnnouncements time.Duration
	Logger                       *slog.Logger
	Entries                      chan Entry
	conn                         *net.UDPConn
	sendConn                     *net.UDPConn
	key                          []byte
	done                         chan struct{}
}

// Entry is an announcement received from another instance.
type Entry struct {
	Info []byte
	Time time.Time
}

func (e Entry) String() string {
	return fmt.Sprintf("%s@%s", e.Info, e.Time.Format(time.RFC3339))
}

// Start joins the multicast group and starts announcing and listening.
func (d *Discover) Start() error {
	if len(d.Info)+keySize > maxPacketSize {
		return fmt.Errorf("announcement of %d bytes does not fit a packet", len(d.Info))
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	d.Entries = make(chan Entry, 10)
	d.done = make(chan struct{})
	key := uuid.New()
	d.key = key[:]
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", multicastIpAddress, d.Port))
	if err != nil {
		return err
	}
	d.conn, err = net.ListenMulticastUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("join multicast group: %w", err)
	}
	d.sendConn, err = net.DialUDP("udp", nil, addr)
	if err != nil {
		return errors.Join(fmt.Errorf("dial multicast group: %w", err), d.conn.Close())
	}
	go d.listen()
	go d.announce()
	return nil
}

// Close stops the discovery and closes the underlying connections.
func (d *Discover) Close() error {
	close(d.done)
	err1 := d.conn.Close()
	err2 := d.sendConn.Close()
	return errors.Join(err1, err2)
}

func (d *Discover) listen() {
	buffer := make([]byte, maxPacketSize)
	for {
		n, _, err := d.conn.ReadFromUDP(buffer)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				d.Logger.Error("discovery listener stopped", "err", err)
			}
			return
		}
		message := buffer[:n]
		if n < keySize || bytes.Equal(message[:keySize], d.key) {
			continue
		}
		entry := Entry{
			Info: bytes.Clone(message[keySize:]),
			Time: time.Now(),
		}
		select {
		case d.Entries <- entry:
		case <-d.done:
			return
		}
	}
}

func (d *Discover) announce() {
	packet := append(bytes.Clone(d.key), d.Info...)
	ticker := time.NewTicker(d.interval())
	defer ticker.Stop()
	for {
		if _, err := d.sendConn.Write(packet); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				d.Logger.Error("discovery announcer stopped", "err", err)
			}
			return
		}
		select {
		case <-ticker.C:
		case <-d.done:
			return
		}
	}
}

func (d *Discover) interval() time.Duration {
	if d.IntervalBetweenAnnouncements <= 0 {
		return time.Second
	}
	return d.IntervalBetweenAnnouncements
}
