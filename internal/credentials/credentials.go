// Package credentials resolves the Entra ID credential used by the Graph
// client. Backends are pluggable so deployments can load the client
// certificate from a file today and a secret manager later without touching
// the cleanup logic.
package credentials

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/config"
)

// Resolver turns identity configuration into a token credential.
type Resolver interface {
	Resolve(cfg *config.Config) (azcore.TokenCredential, error)
}

// ForConfig picks the backend matching the validated configuration.
func ForConfig(cfg *config.Config) Resolver {
	if cfg.CertificateFile != "" {
		return &CertificateFileResolver{}
	}
	return &ClientSecretResolver{}
}

// CertificateFileResolver loads a PEM or PFX certificate from disk and
// requires the configured thumbprint to match one of the parsed certificates.
type CertificateFileResolver struct{}

// Resolve reads and parses the certificate file and builds a client
// certificate credential for the configured tenant and application.
func (r *CertificateFileResolver) Resolve(cfg *config.Config) (azcore.TokenCredential, error) {
	data, err := os.ReadFile(cfg.CertificateFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read certificate file %s", cfg.CertificateFile)
	}

	var password []byte
	if cfg.CertificatePassword != "" {
		password = []byte(cfg.CertificatePassword)
	}
	certs, key, err := azidentity.ParseCertificates(data, password)
	if err != nil {
		return nil, errors.Wrapf(err, "parse certificate file %s", cfg.CertificateFile)
	}

	if err := matchThumbprint(certs, cfg.CertificateThumbprint); err != nil {
		return nil, err
	}

	cred, err := azidentity.NewClientCertificateCredential(cfg.TenantID, cfg.ClientID, certs, key, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create client certificate credential")
	}
	return cred, nil
}

// ClientSecretResolver builds a credential from a client secret.
type ClientSecretResolver struct{}

func (r *ClientSecretResolver) Resolve(cfg *config.Config) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create client secret credential")
	}
	return cred, nil
}

// matchThumbprint compares the SHA-1 digest of each certificate's DER bytes
// against the configured thumbprint. Colons and case are ignored.
func matchThumbprint(certs []*x509.Certificate, thumbprint string) error {
	want := strings.ReplaceAll(thumbprint, ":", "")
	for _, cert := range certs {
		sum := sha1.Sum(cert.Raw)
		if strings.EqualFold(hex.EncodeToString(sum[:]), want) {
			return nil
		}
	}
	return errors.Errorf("no certificate matches thumbprint %s", thumbprint)
}
