package discovery

import (
	"fmt"
	"testing"
	"time"
)

func TestDiscover(t *testing.T) {
	n := 5
	fatal := make(chan error)
	for i := range n {
		go func() {
			discover := Discover{
				Info:                         []byte(fmt.Sprint(i)),
				IntervalBetweenAnnouncements: 200 * time.Millisecond,
				Port:                         53552,
			}
			if err := discover.Start(); err != nil {
				fatal <- err
				return
			}
			defer discover.Close()
			set := make(map[string]struct{})
			for len(set) < n-1 {
				entry := <-discover.Entries
				if time.Since(entry.Time) < 0 {
					fatal <- fmt.Errorf("from node %d: time out of clock", i)
					return
				}
				set[string(entry.Info)] = struct{}{}
			}
			if _, ok := set[fmt.Sprint(i)]; ok {
				fatal <- fmt.Errorf("node %d received its own announcement", i)
				return
			}
			fatal <- nil
		}()
	}
	for range n {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}
}

func TestClose(t *testing.T) {
	n := 5
	fatal := make(chan error)
	for i := range n {
		go func() {
			discover := Discover{
				Info: []byte(fmt.Sprint(i)),
				Port: 53553,
			}
			if err := discover.Start(); err != nil {
				fatal <- err
				return
			}
			time.Sleep(500 * time.Millisecond)
			fatal <- discover.Close()
		}()
	}
	for range n {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}
}
