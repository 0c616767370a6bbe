// Package probe checks that the Immich API and database are reachable with the
// configured credentials before a command does any work.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kozaktomas/immich-tools/internal/config"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/kozaktomas/immich-tools/internal/logging"
	"go.uber.org/zap"
)

var (
	// ErrAPI is returned when the Immich API cannot be reached or rejects the API key.
	ErrAPI = errors.New("immich api unreachable")
	// ErrDatabase is returned when the database cannot be reached.
	ErrDatabase = errors.New("database unreachable")
)

// API is the part of the Immich client used by the probe.
type API interface {
	ServerAbout(ctx context.Context) (*immich.ServerAbout, error)
}

// Pinger verifies a database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Credentials is the bundle of settings that passed the probe.
type Credentials struct {
	values        map[string]string
	ServerVersion string
}

// Map returns a copy of every setting keyed by its environment variable name.
func (c *Credentials) Map() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Get returns a single setting.
func (c *Credentials) Get(key string) string {
	return c.values[key]
}

// String lists the settings with secrets redacted.
func (c *Credentials) String() string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := c.values[k]
		if isSecret(k) && v != "" {
			v = logging.RedactedText
		}
		fmt.Fprintf(&sb, "%s=%s\n", k, v)
	}
	return sb.String()
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "_PASSWORD") || strings.HasSuffix(key, "_API_KEY")
}

// Probe calls the server about endpoint and pings the database. Status lines are
// written to out. On failure the returned error wraps ErrAPI or ErrDatabase and the
// database is not checked when the API already failed.
func Probe(ctx context.Context, out io.Writer, cfg *config.Config, api API, db Pinger) (*Credentials, error) {
	logger := logging.FromContext(ctx)

	about, err := api.ServerAbout(ctx)
	if err != nil {
		var apiErr *immich.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(out, "HTTP error occurred: %s\n", logging.SanitizeError(err))
			logger.Error("server about request failed",
				zap.Int("status", apiErr.StatusCode),
				zap.String("body", apiErr.Body))
		} else {
			fmt.Fprintf(out, "Other error occurred: %s\n", logging.SanitizeError(err))
			logger.Error("server about request failed", zap.String("error", logging.SanitizeError(err)))
		}
		fmt.Fprintln(out, "Please check the server address and API key")
		return nil, fmt.Errorf("%w: %w", ErrAPI, err)
	}
	fmt.Fprintln(out, "Connection to Immich API successful!")

	if err := db.Ping(ctx); err != nil {
		fmt.Fprintf(out, "Database error occurred: %s\n", logging.SanitizeError(err))
		logger.Error("database ping failed",
			zap.String("dsn", logging.SanitizeDSN(cfg.Database.DSN())),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	fmt.Fprintln(out, "Connection to database successful!")

	return &Credentials{values: cfg.Values(), ServerVersion: about.Version}, nil
}
