// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode is the resolved way the server terminates TLS.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

// certRenewWindow is how close to expiry a self-signed cert gets replaced.
const certRenewWindow = 30 * 24 * time.Hour

// TLSSetup is what the listener needs for the resolved mode.
type TLSSetup struct {
	Mode      TLSMode
	TLSConfig *tls.Config
	// ChallengeHandler answers ACME HTTP-01 challenges on :80 and
	// redirects everything else to HTTPS. Only set in ACME mode.
	ChallengeHandler http.Handler
}

// SetupTLS resolves cfg.TLS.Mode and prepares certificates for it.
func SetupTLS(cfg *config.Config) (*TLSSetup, error) {
	mode := resolveTLSMode(cfg, isPortAvailable)
	slog.Info("tls_mode", "mode", mode)

	switch mode {
	case TLSModeOff:
		return &TLSSetup{Mode: TLSModeOff}, nil
	case TLSModeACME:
		if cfg.TLS.Email == "" {
			return nil, errors.New("acme TLS mode requires TLS_EMAIL")
		}
		return setupACME(cfg)
	case TLSModeSelfSigned:
		return setupSelfSigned(cfg, time.Now())
	case TLSModeManual:
		return setupManual(cfg)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", mode)
	}
}

// resolveTLSMode picks the explicit mode when one is set. In auto mode
// localhost serves plain HTTP, cert files mean manual and a public host
// with an ACME email and free ports gets Let's Encrypt.
func resolveTLSMode(cfg *config.Config, portFree func(int) bool) TLSMode {
	switch mode := strings.ToLower(cfg.TLS.Mode); mode {
	case "off", "acme", "selfsigned", "manual":
		return TLSMode(mode)
	case "auto", "":
	default:
		slog.Warn("tls_mode_unknown", "mode", mode)
	}

	host := cfg.Server.Host
	switch {
	case config.IsLocalhost(host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	case net.ParseIP(host) == nil && cfg.TLS.Email != "" && portFree(80) && portFree(443):
		return TLSModeACME
	default:
		return TLSModeSelfSigned
	}
}

func isPortAvailable(port int) bool {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func setupACME(cfg *config.Config) (*TLSSetup, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating ACME cert directory: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(dir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	return &TLSSetup{
		Mode:             TLSModeACME,
		TLSConfig:        tlsConfig,
		ChallengeHandler: manager.HTTPHandler(nil),
	}, nil
}

// setupSelfSigned reuses the stored certificate until it nears expiry.
func setupSelfSigned(cfg *config.Config, now time.Time) (*TLSSetup, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "selfsigned")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating self-signed cert directory: %w", err)
	}
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil || expiresWithin(&cert, now, certRenewWindow) {
		if cert, err = generateSelfSigned(cfg.Server.Host, certFile, keyFile, now); err != nil {
			return nil, err
		}
		slog.Info("tls_selfsigned_generated", "dir", dir)
	}

	slog.Warn("tls_selfsigned_in_use", "sha256", fingerprint(&cert))
	return &TLSSetup{Mode: TLSModeSelfSigned, TLSConfig: tlsConfig(cert)}, nil
}

func setupManual(cfg *config.Config) (*TLSSetup, error) {
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, errors.New("manual TLS mode requires both cert-file and key-file")
	}
	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading certificate: %w", err)
	}
	slog.Info("tls_manual_loaded", "cert", cfg.TLS.CertFile, "sha256", fingerprint(&cert))
	return &TLSSetup{Mode: TLSModeManual, TLSConfig: tlsConfig(cert)}, nil
}

// generateSelfSigned writes a one-year ECDSA P-256 certificate valid for
// host and the loopback addresses.
func generateSelfSigned(host, certFile, keyFile string, now time.Time) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating serial: %w", err)
	}

	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"myLife"}, CommonName: host},
		NotBefore:             now,
		NotAfter:              now.AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
	} else if host != "" {
		tmpl.DNSNames = append(tmpl.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("creating certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("marshaling key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("writing cert file: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("writing key file: %w", err)
	}

	return tls.X509KeyPair(certPEM, keyPEM)
}

func expiresWithin(cert *tls.Certificate, now time.Time, window time.Duration) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return leaf.NotAfter.Sub(now) < window
}

func fingerprint(cert *tls.Certificate) string {
	if len(cert.Certificate) == 0 {
		return ""
	}
	sum := sha256.Sum256(cert.Certificate[0])
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func tlsConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}
