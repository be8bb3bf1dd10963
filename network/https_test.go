package network

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"testing"
)

func TestHttpsBroadcast(t *testing.T) {
	n := 4
	certPool := x509.NewCertPool()
	certs := make([]tls.Certificate, n)
	for i := range n {
		cert, certPEM, _, err := GenerateSelfSignedCert("127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		certPool.AppendCertsFromPEM(certPEM)
		certs[i] = cert
	}
	peers := startPeers(t, n, func(i int, addr string) []PeerOption {
		return []PeerOption{WithCertificate(certs[i]), WithLimitedCAs(certPool)}
	})
	testBroadcast(t, peers)
}

func TestGenerateSelfSignedCert(t *testing.T) {
	_, certPEM, keyPEM, err := GenerateSelfSignedCert("127.0.0.1:8443")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(certPEM)
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := GenerateSelfSignedCert("no-port"); err == nil {
		t.Fatal("expected an error for an address without port")
	}
}
