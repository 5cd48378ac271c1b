// Package certs generates, loads and renews the self-signed certificate
// served by the HTTPS listener. Certificate and key share one PEM file.
package certs

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/fileutil"
)

// Sentinel errors for certificate operations.
var (
	ErrGenerate       = errors.New("certificate generation failed")
	ErrInvalidPEM     = errors.New("invalid certificate file")
	ErrExpired        = errors.New("certificate expired")
	ErrUnsupportedKey = errors.New("unsupported private key type")
)

// KeyFilePermissions restricts the combined PEM to the owner.
const KeyFilePermissions = 0o600

// Options describes the certificate to generate.
type Options struct {
	CommonName   string
	Hosts        []string // DNS names or IP addresses, CommonName is always included
	ValidityDays int
	Now          time.Time
}

// Generate creates a self-signed ECDSA P-256 certificate and returns the
// certificate followed by its PKCS#8 key, PEM encoded.
func Generate(opts Options) ([]byte, error) {
	if opts.CommonName == "" {
		return nil, fmt.Errorf("%w: empty common name", ErrGenerate)
	}
	if opts.ValidityDays < 1 {
		return nil, fmt.Errorf("%w: validity must be positive, got %d days", ErrGenerate, opts.ValidityDays)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opts.CommonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.AddDate(0, 0, opts.ValidityDays),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range append([]string{opts.CommonName}, opts.Hosts...) {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else if h != "" {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	out := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	out = append(out, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})...)
	return out, nil
}

// Parse reads a combined PEM holding one or more certificates and a private
// key in PKCS#1, PKCS#8 or SEC1 form.
func Parse(data []byte) (*tls.Certificate, error) {
	var (
		cert   tls.Certificate
		keyDER *pem.Block
		rest   = data
	)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch {
		case block.Type == "CERTIFICATE":
			cert.Certificate = append(cert.Certificate, block.Bytes)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			keyDER = block
		}
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("%w: no certificate block", ErrInvalidPEM)
	}
	if keyDER == nil {
		return nil, fmt.Errorf("%w: no private key block", ErrInvalidPEM)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
	}
	cert.Leaf = leaf
	if cert.PrivateKey, err = parsePrivateKey(keyDER.Bytes); err != nil {
		return nil, err
	}
	return &cert, nil
}

func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		default:
			return nil, ErrUnsupportedKey
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unparsable private key", ErrInvalidPEM)
}

// Load reads and parses the PEM file at path.
func Load(path string) (*tls.Certificate, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from settings
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Expired reports whether the certificate is past its NotAfter.
func Expired(cert *tls.Certificate, now time.Time) bool {
	return cert == nil || cert.Leaf == nil || now.After(cert.Leaf.NotAfter)
}

// ExpiresWithin reports whether the certificate expires before now+window.
func ExpiresWithin(cert *tls.Certificate, now time.Time, window time.Duration) bool {
	return Expired(cert, now) || now.Add(window).After(cert.Leaf.NotAfter)
}

// Ensure loads the certificate at path. An absent, unparsable or expired
// certificate is replaced by a newly generated one. The second return
// value reports whether a new certificate was written.
func Ensure(path string, opts Options, log logrus.FieldLogger) (*tls.Certificate, bool, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	entry := log.WithField("file", path)

	cert, err := Load(path)
	switch {
	case err == nil && !Expired(cert, now):
		entry.WithField("expires_in", units.HumanDuration(cert.Leaf.NotAfter.Sub(now))).Debug("certificate loaded")
		return cert, false, nil
	case err == nil:
		entry.WithField("not_after", cert.Leaf.NotAfter).Warn("certificate expired, generating a new one")
	case errors.Is(err, os.ErrNotExist):
		entry.Info("certificate not found, generating a new one")
	default:
		entry.WithError(err).Warn("certificate unreadable, generating a new one")
	}

	cert, err = Regenerate(path, opts)
	if err != nil {
		return nil, false, err
	}
	entry.WithFields(logrus.Fields{
		"common_name": opts.CommonName,
		"valid_for":   units.HumanDuration(cert.Leaf.NotAfter.Sub(now)),
	}).Info("certificate generated")
	return cert, true, nil
}

// Regenerate writes a new certificate to path and returns it parsed.
func Regenerate(path string, opts Options) (*tls.Certificate, error) {
	data, err := Generate(opts)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(path, data, KeyFilePermissions); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", ErrGenerate, path, err)
	}
	cert, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return cert, nil
}
