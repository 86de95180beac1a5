package migration

import (
	"fmt"
	"strings"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
)

// Strategy names one way of recovering the owner of a legacy record.
type Strategy string

const (
	// StrategyExplicit uses a non-empty member_id or owner_id field.
	StrategyExplicit Strategy = "explicit"
	// StrategySignature derives the owner from a signatures/<owner>/<blob> key.
	StrategySignature Strategy = "signature"
	// StrategyPlaceholder synthesizes unknown_<first 8 chars of transaction_id>.
	StrategyPlaceholder Strategy = "placeholder"
)

// PlaceholderPrefix starts every synthesized owner ID.
const PlaceholderPrefix = "unknown_"

const placeholderIDChars = 8

// DefaultStrategies recovers as many records as possible.
var DefaultStrategies = []Strategy{StrategyExplicit, StrategySignature, StrategyPlaceholder}

// StrictStrategies only trusts explicit owners; everything else is skipped.
var StrictStrategies = []Strategy{StrategyExplicit}

// ParseStrategies reads a preset name ("default", "strict") or a comma separated list of
// strategy names. Order is significant and duplicates are rejected.
func ParseStrategies(s string) ([]Strategy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "default":
		return append([]Strategy(nil), DefaultStrategies...), nil
	case "strict":
		return append([]Strategy(nil), StrictStrategies...), nil
	}

	seen := make(map[Strategy]bool)
	var out []Strategy
	for _, part := range strings.Split(s, ",") {
		st := Strategy(strings.TrimSpace(part))
		switch st {
		case StrategyExplicit, StrategySignature, StrategyPlaceholder:
		default:
			return nil, fmt.Errorf("unknown owner recovery strategy %q", part)
		}
		if seen[st] {
			return nil, fmt.Errorf("owner recovery strategy %q listed twice", st)
		}
		seen[st] = true
		out = append(out, st)
	}
	return out, nil
}

// resolveOwner tries each strategy in order. transactionID must already be set when the
// placeholder strategy is in the list.
func resolveOwner(rec domain.RawLegacyRecord, transactionID string, strategies []Strategy) (string, Strategy, bool) {
	for _, st := range strategies {
		switch st {
		case StrategyExplicit:
			if owner := domain.Deref(rec.MemberID); owner != "" {
				return owner, st, true
			}
			if owner := domain.Deref(rec.OwnerID); owner != "" {
				return owner, st, true
			}
		case StrategySignature:
			if owner, ok := domain.OwnerFromSignatureKey(domain.Deref(rec.SignatureKey)); ok {
				return owner, st, true
			}
		case StrategyPlaceholder:
			if transactionID != "" {
				return Placeholder(transactionID), st, true
			}
		}
	}
	return "", "", false
}

// Placeholder returns the synthesized owner ID for a transaction: the prefix followed by the
// first placeholderIDChars characters (not bytes) of the transaction ID.
func Placeholder(transactionID string) string {
	if runes := []rune(transactionID); len(runes) > placeholderIDChars {
		return PlaceholderPrefix + string(runes[:placeholderIDChars])
	}
	return PlaceholderPrefix + transactionID
}
