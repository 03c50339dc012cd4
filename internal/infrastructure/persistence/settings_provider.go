package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DBSettingsProvider overlays the transaction_webhook.* rows of
// config_parameters on static defaults. Rows are read on every call so that
// operators can rotate the secret or toggle debug without a restart.
type DBSettingsProvider struct {
	params   bankfeed.ConfigParameterRepository
	defaults bankfeed.Settings
	logger   *zap.Logger
}

// NewDBSettingsProvider creates a DBSettingsProvider
func NewDBSettingsProvider(params bankfeed.ConfigParameterRepository, defaults bankfeed.Settings, logger *zap.Logger) *DBSettingsProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBSettingsProvider{
		params:   params,
		defaults: defaults,
		logger:   logger,
	}
}

// Settings implements bankfeed.SettingsProvider
func (p *DBSettingsProvider) Settings(ctx context.Context) (bankfeed.Settings, error) {
	stored, err := p.params.GetAll(ctx)
	if err != nil {
		return bankfeed.Settings{}, fmt.Errorf("load config parameters: %w", err)
	}

	s := p.defaults
	if v, ok := stored[bankfeed.ParamHMACSecret]; ok {
		s.HMACSecret = strings.TrimSpace(v)
	}
	if v, ok := stored[bankfeed.ParamAllowedIPs]; ok {
		s.AllowedIPs = bankfeed.ParseIPList(v)
	}
	if v, ok := stored[bankfeed.ParamDefaultJournalID]; ok {
		s.DefaultJournalID = nil
		if v = strings.TrimSpace(v); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				p.logger.Warn("Ignoring malformed default journal id",
					zap.String("key", bankfeed.ParamDefaultJournalID),
					zap.String("value", v),
				)
			} else {
				s.DefaultJournalID = &id
			}
		}
	}
	if v, ok := stored[bankfeed.ParamDebug]; ok {
		s.Debug = bankfeed.ParseFlag(v)
	}
	if v, ok := stored[bankfeed.ParamStrictMode]; ok {
		s.StrictMode = bankfeed.ParseFlag(v)
	}
	return s, nil
}
