// Package credentials resolves the read-only service-account credentials used to
// reach the leaderboard spreadsheet.
package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
)

// Origin says where a credential was found.
type Origin string

const (
	OriginSecret Origin = "secret"
	OriginFile   Origin = "file"
)

// Config locates the service-account key.
type Config struct {
	SecretEnv string // env var holding the JSON key; checked first
	File      string // path to the JSON key; fallback
}

// Provider resolves credentials from the secret store first and a file second.
type Provider struct {
	cfg      Config
	getenv   func(string) string
	readFile func(string) ([]byte, error)
}

// NewProvider creates a provider reading from the process environment and filesystem.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:      cfg,
		getenv:   os.Getenv,
		readFile: os.ReadFile,
	}
}

// Resolved is a credential plus where it came from.
type Resolved struct {
	Credentials *google.Credentials
	Origin      Origin
}

// Resolve returns read-only Sheets credentials. Failure to find or parse a key
// is reported as a source-unavailable error.
func (p *Provider) Resolve(ctx context.Context) (*Resolved, error) {
	data, origin, err := p.raw()
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSONWithType(ctx, data, google.ServiceAccount, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, errors.SourceUnavailable(fmt.Sprintf("parse %s credentials", origin), err)
	}

	return &Resolved{Credentials: creds, Origin: origin}, nil
}

// ClientOptions resolves credentials and returns them as API client options.
func (p *Provider) ClientOptions(ctx context.Context) ([]option.ClientOption, Origin, error) {
	resolved, err := p.Resolve(ctx)
	if err != nil {
		return nil, "", err
	}
	return []option.ClientOption{option.WithCredentials(resolved.Credentials)}, resolved.Origin, nil
}

func (p *Provider) raw() ([]byte, Origin, error) {
	if p.cfg.SecretEnv != "" {
		if secret := strings.TrimSpace(p.getenv(p.cfg.SecretEnv)); secret != "" {
			return []byte(secret), OriginSecret, nil
		}
	}

	if p.cfg.File == "" {
		return nil, "", errors.SourceUnavailable("no service account credentials configured", nil)
	}

	data, err := p.readFile(p.cfg.File)
	if err != nil {
		return nil, "", errors.SourceUnavailable("read credentials file", err)
	}
	return data, OriginFile, nil
}
