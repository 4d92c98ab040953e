package fetch

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// Reason maps a transport error to a short diagnostic classification. The
// raw error text stays in logs; the classification is what gets persisted.
func Reason(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns-failure"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection-refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection-reset"
	}
	var certErr *tls.CertificateVerificationError
	var unkAuthErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &unkAuthErr) {
		return "tls-verification-failure"
	}
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return "tls-handshake-failure"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "network-error"
}
