package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// guessIpAddress completes a partial IPv4 address with the leading octets of
// baseAddress: "42" on 192.168.0.1 is 192.168.0.42.
func guessIpAddress(baseAddress net.IP, partialAddr string) (net.IP, error) {
	ip := make(net.IP, len(baseAddress))
	copy(ip, baseAddress)
	if partialAddr == "" {
		return ip, nil
	}
	octets := strings.Split(partialAddr, ".")
	if len(octets) > 4 || len(octets) > len(ip) {
		return nil, fmt.Errorf("too many octets in %q", partialAddr)
	}
	for i, s := range octets {
		octet, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("octet %q: %w", s, err)
		}
		ip[len(ip)-len(octets)+i] = byte(octet)
	}
	return ip, nil
}

// subnetOfListener returns the network of the interface holding the address
// of l.
func subnetOfListener(l *net.TCPListener) (net.IPNet, error) {
	tcpAddr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return net.IPNet{}, fmt.Errorf("listener is not TCP")
	}
	ip := tcpAddr.IP
	if ip == nil || ip.IsUnspecified() {
		return net.IPNet{}, fmt.Errorf("listener has unspecified IP %v", ip)
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}
	for _, ifi := range ifaces {
		addrs, _ := ifi.Addrs()
		for _, a := range addrs {
			var ipnet *net.IPNet
			switch v := a.(type) {
			case *net.IPNet:
				ipnet = v
			case *net.IPAddr:
				ipnet = &net.IPNet{IP: v.IP, Mask: v.IP.DefaultMask()}
			}
			if ipnet != nil && ipnet.Contains(ip) {
				return *ipnet, nil
			}
		}
	}
	return net.IPNet{}, fmt.Errorf("no interface found for ip %v", ip)
}

// splitHostPort is net.SplitHostPort falling back to defaultPort.
func splitHostPort(addr string, defaultPort int) (string, string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		return host, port, nil
	}
	return net.SplitHostPort(net.JoinHostPort(addr, strconv.Itoa(defaultPort)))
}
