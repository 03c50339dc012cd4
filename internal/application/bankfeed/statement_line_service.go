package bankfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/erp/bankfeed/internal/infrastructure/cache"
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"github.com/erp/bankfeed/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const guardKeyPrefix = "casso:tx:"

// JournalResolver picks the journal for an account identifier
type JournalResolver interface {
	Resolve(ctx context.Context, identifier string, settings bankfeed.Settings) (*bankfeed.Journal, error)
}

// StatementLineOptions tunes StatementLineService
type StatementLineOptions struct {
	// Location decides "today" for transactions without a usable timestamp
	Location *time.Location
	// GuardTTL bounds how long one delivery holds the per-transaction lock
	GuardTTL time.Duration
	// GuardWait is how long a concurrent delivery waits for the holder's line
	GuardWait time.Duration
	// PollInterval is the lookup cadence while waiting
	PollInterval time.Duration
}

// StatementLineService turns provider transactions into statement lines,
// at most one line per external transaction id.
type StatementLineService struct {
	lines    bankfeed.StatementLineRepository
	resolver JournalResolver
	guard    cache.DeliveryGuard
	metrics  *telemetry.WebhookMetrics
	opts     StatementLineOptions
	now      func() time.Time
}

// NewStatementLineService creates a StatementLineService. A nil guard
// disables cross-delivery locking; nil metrics record nothing.
func NewStatementLineService(
	lines bankfeed.StatementLineRepository,
	resolver JournalResolver,
	guard cache.DeliveryGuard,
	metrics *telemetry.WebhookMetrics,
	opts StatementLineOptions,
) *StatementLineService {
	if guard == nil {
		guard = cache.NoopGuard{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.GuardTTL <= 0 {
		opts.GuardTTL = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	return &StatementLineService{
		lines:    lines,
		resolver: resolver,
		guard:    guard,
		metrics:  metrics,
		opts:     opts,
		now:      time.Now,
	}
}

// Process records tx and reports whether a new line was created. A
// transaction seen before returns the existing line with created=false and
// is never updated.
func (s *StatementLineService) Process(ctx context.Context, tx bankfeed.ExternalTransaction, settings bankfeed.Settings) (*bankfeed.StatementLine, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "bankfeed.process_transaction",
		attribute.String(telemetry.SpanAttrExternalID, tx.ExternalID),
		attribute.String(telemetry.SpanAttrAccount, tx.AccountIdentifier),
	)
	defer span.End()

	line, created, err := s.process(ctx, tx, settings)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.LineFailed(ctx, errorCode(err))
		logger.L(ctx).Warn("Bank transaction not recorded",
			zap.String("external_id", tx.ExternalID),
			zap.String("account_identifier", tx.AccountIdentifier),
			zap.Error(err),
		)
		return nil, false, err
	}

	span.SetAttributes(
		attribute.String(telemetry.SpanAttrJournalID, line.JournalID.String()),
		attribute.Bool(telemetry.SpanAttrCreated, created),
	)
	telemetry.SetOK(span)

	if created {
		s.metrics.LineCreated(ctx)
		logger.L(ctx).Info("Bank statement line created",
			zap.String("external_id", line.ExternalID),
			zap.String("line_id", line.ID.String()),
			zap.String("journal_id", line.JournalID.String()),
			zap.String("amount", line.Amount.String()),
		)
	} else {
		s.metrics.LineDuplicate(ctx)
		logger.L(ctx).Info("Bank transaction already recorded",
			zap.String("external_id", line.ExternalID),
			zap.String("line_id", line.ID.String()),
		)
	}
	return line, created, nil
}

func (s *StatementLineService) process(ctx context.Context, tx bankfeed.ExternalTransaction, settings bankfeed.Settings) (*bankfeed.StatementLine, bool, error) {
	if err := tx.Validate(); err != nil {
		return nil, false, err
	}
	date := bankfeed.NormalizeDate(tx.TransactionDateTime, s.now().In(s.opts.Location))

	release, existing, err := s.hold(ctx, tx.ExternalID)
	if err != nil {
		return nil, false, err
	}
	defer release()
	if existing != nil {
		return existing, false, nil
	}

	existing, err = s.find(ctx, tx.ExternalID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	journal, err := s.resolver.Resolve(ctx, tx.AccountIdentifier, settings)
	if err != nil {
		return nil, false, err
	}

	line := bankfeed.NewStatementLineFromTransaction(tx, journal, date)
	if err := s.lines.Create(ctx, line); err != nil {
		if !errors.Is(err, bankfeed.ErrDuplicateExternalID) {
			return nil, false, fmt.Errorf("create statement line: %w", err)
		}
		// Lost the insert race to a concurrent delivery
		existing, findErr := s.find(ctx, tx.ExternalID)
		if findErr != nil {
			return nil, false, findErr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("statement line for %s rejected as duplicate but not found: %w", tx.ExternalID, err)
		}
		return existing, false, nil
	}
	return line, true, nil
}

// hold takes the delivery guard for externalID. When another delivery holds
// it, hold waits up to GuardWait for that delivery's line and returns it.
// Guard failures are logged and processing continues unguarded.
func (s *StatementLineService) hold(ctx context.Context, externalID string) (func(), *bankfeed.StatementLine, error) {
	key := guardKeyPrefix + externalID
	noop := func() {}

	token, acquired, err := s.guard.Acquire(ctx, key, s.opts.GuardTTL)
	if err != nil {
		logger.L(ctx).Warn("Delivery guard unavailable, continuing without it",
			zap.String("external_id", externalID), zap.Error(err))
		return noop, nil, nil
	}
	if acquired {
		return func() {
			// Release with a fresh context so a cancelled request still frees the key
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if err := s.guard.Release(releaseCtx, key, token); err != nil {
				logger.L(ctx).Warn("Failed to release delivery guard",
					zap.String("external_id", externalID), zap.Error(err))
			}
		}, nil, nil
	}

	deadline := s.now().Add(s.opts.GuardWait)
	for {
		line, err := s.find(ctx, externalID)
		if err != nil {
			return noop, nil, err
		}
		if line != nil {
			return noop, line, nil
		}
		if !s.now().Before(deadline) {
			logger.L(ctx).Debug("Concurrent delivery still in flight, proceeding",
				zap.String("external_id", externalID))
			return noop, nil, nil
		}
		select {
		case <-ctx.Done():
			return noop, nil, ctx.Err()
		case <-time.After(s.opts.PollInterval):
		}
	}
}

func (s *StatementLineService) find(ctx context.Context, externalID string) (*bankfeed.StatementLine, error) {
	line, err := s.lines.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find statement line: %w", err)
	}
	return line, nil
}

// ProcessBatch runs Process for each transaction. Failures are reported per
// item and never stop the remaining items.
func (s *StatementLineService) ProcessBatch(ctx context.Context, items []map[string]any, settings bankfeed.Settings) []ItemResult {
	ctx, span := telemetry.StartSpan(ctx, "bankfeed.process_batch",
		attribute.Int(telemetry.SpanAttrItems, len(items)),
	)
	defer span.End()

	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		tx, err := bankfeed.ParseExternalTransaction(item)
		if err != nil {
			s.metrics.LineFailed(ctx, errorCode(err))
			results = append(results, failureResult(err))
			continue
		}
		line, created, err := s.Process(ctx, tx, settings)
		if err != nil {
			results = append(results, failureResult(err))
			continue
		}
		results = append(results, successResult(line, created))
	}
	return results
}

// errorCode extracts the domain error code for metrics, INTERNAL otherwise
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}
