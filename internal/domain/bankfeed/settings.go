package bankfeed

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Keys of the operator-managed parameters
const (
	ParamHMACSecret       = "transaction_webhook.hmac_secret"
	ParamAllowedIPs       = "transaction_webhook.allowed_ips"
	ParamDefaultJournalID = "transaction_webhook.default_journal_id"
	ParamDebug            = "transaction_webhook.debug"
	ParamStrictMode       = "transaction_webhook.strict_mode"
)

// KnownParams lists every parameter the webhook reads
var KnownParams = []string{
	ParamHMACSecret,
	ParamAllowedIPs,
	ParamDefaultJournalID,
	ParamDebug,
	ParamStrictMode,
}

// IsKnownParam reports whether key is one of KnownParams
func IsKnownParam(key string) bool {
	for _, k := range KnownParams {
		if k == key {
			return true
		}
	}
	return false
}

// Settings is the webhook configuration in effect for one request
type Settings struct {
	HMACSecret       string
	AllowedIPs       []string
	DefaultJournalID *uuid.UUID
	Debug            bool
	StrictMode       bool
}

// IPAllowed reports whether ip may call the webhook. An empty allow-list admits everyone.
func (s Settings) IPAllowed(ip string) bool {
	if len(s.AllowedIPs) == 0 {
		return true
	}
	for _, allowed := range s.AllowedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// SettingsProvider supplies the current settings. Implementations may read
// them from static configuration or from the config_parameters table.
type SettingsProvider interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticSettings is a SettingsProvider returning a fixed value
type StaticSettings Settings

// Settings implements SettingsProvider
func (s StaticSettings) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// ParseIPList splits a comma-separated allow-list, dropping blanks
func ParseIPList(raw string) []string {
	var ips []string
	for _, part := range strings.Split(raw, ",") {
		if ip := strings.TrimSpace(part); ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

// ParseFlag interprets the textual booleans accepted for debug and strict mode
func ParseFlag(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "1", "true", "True":
		return true
	}
	return false
}
