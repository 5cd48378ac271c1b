package certs

import (
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager serves the current certificate and swaps it on renewal without
// restarting listeners.
type Manager struct {
	path    string
	opts    Options
	renewIn time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
	current atomic.Pointer[tls.Certificate]
}

// NewManager ensures a valid certificate exists at path and returns a
// Manager serving it. renewBefore is the window before expiry in which
// Renew replaces the certificate.
func NewManager(path string, opts Options, renewBefore time.Duration, log logrus.FieldLogger, now func() time.Time) (*Manager, error) {
	if now == nil {
		now = time.Now
	}
	m := &Manager{path: path, opts: opts, renewIn: renewBefore, log: log, now: now}
	opts.Now = now()
	cert, _, err := Ensure(path, opts, log)
	if err != nil {
		return nil, err
	}
	m.current.Store(cert)
	return m, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (m *Manager) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return m.current.Load(), nil
}

// Current returns the certificate being served.
func (m *Manager) Current() *tls.Certificate {
	return m.current.Load()
}

// NotAfter returns the expiry of the served certificate.
func (m *Manager) NotAfter() time.Time {
	if c := m.current.Load(); c != nil && c.Leaf != nil {
		return c.Leaf.NotAfter
	}
	return time.Time{}
}

// Renew regenerates the certificate when it expires within the renewal
// window. It reports whether a new certificate is now served.
func (m *Manager) Renew() (bool, error) {
	now := m.now()
	if !ExpiresWithin(m.current.Load(), now, m.renewIn) {
		return false, nil
	}
	opts := m.opts
	opts.Now = now
	cert, err := Regenerate(m.path, opts)
	if err != nil {
		return false, err
	}
	m.current.Store(cert)
	m.log.WithFields(logrus.Fields{"file": m.path, "not_after": cert.Leaf.NotAfter}).Info("certificate renewed")
	return true, nil
}
