// Package discovery finds the peers of the local network over UDP multicast.
//
// A Discover announces a payload periodically and delivers the announcements
// of the other instances on its Entries channel:
//
//	d := &discovery.Discover{
//		Info:                         []byte("127.0.0.1:4000"),
//		Port:                         53550,
//		IntervalBetweenAnnouncements: time.Second,
//	}
//	if err := d.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
// A Watcher turns the stream of announcements into membership changes: an
// address joins on its first announcement and leaves once it has been silent
// for longer than the lease.
//
// Behavior:
//   - Announcements are sent to 239.0.0.1 on the configured port.
//   - Each instance prefixes its packets with a random key and ignores its own.
//   - Network errors stop the background goroutines and are logged.
package discovery
