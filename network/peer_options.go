package network

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net/http"
	"time"
)

type PeerOption func(*Peer)

// WithTimeout bounds the retries of a single delivery.
func WithTimeout(timeout time.Duration) PeerOption {
	return func(p *Peer) {
		p.timeout = timeout
	}
}

func WithLogger(log *slog.Logger) PeerOption {
	return func(p *Peer) {
		p.log = log
	}
}

func WithCertificate(cert tls.Certificate) PeerOption {
	return func(p *Peer) {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.Certificates = append(p.tlsConfig.Certificates, cert)
		p.client.Transport = &http.Transport{
			TLSClientConfig: p.tlsConfig,
		}
	}
}

// WithLimitedCAs only trusts the certificates in certPool, as server and as
// client.
func WithLimitedCAs(certPool *x509.CertPool) PeerOption {
	return func(p *Peer) {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.RootCAs = certPool
		p.tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		p.tlsConfig.ClientCAs = certPool
		p.client.Transport = &http.Transport{
			TLSClientConfig: p.tlsConfig,
		}
	}
}
