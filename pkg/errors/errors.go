// Package errors provides structured error handling for lantern.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
	ExitFatal      = 6 // Unrecoverable state (exhausted unlock, corruption)
)

// LanternError is the structured error type for lantern.
type LanternError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *LanternError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LanternError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for LanternError.
func (e *LanternError) Is(target error) bool {
	var t *LanternError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &LanternError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &LanternError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Key vault errors.
	ErrWeakPin = &LanternError{
		Code:     "WEAK_PIN",
		Message:  "PIN must be 4-32 digits",
		ExitCode: ExitInput,
	}

	ErrWrongPin = &LanternError{
		Code:     "WRONG_PIN",
		Message:  "incorrect PIN",
		ExitCode: ExitAuth,
	}

	ErrUnlockExhausted = &LanternError{
		Code:     "UNLOCK_EXHAUSTED",
		Message:  "too many failed unlock attempts",
		ExitCode: ExitFatal,
	}

	ErrUnlockCancelled = &LanternError{
		Code:     "UNLOCK_CANCELLED",
		Message:  "unlock cancelled",
		ExitCode: ExitAuth,
	}

	ErrVaultCorrupted = &LanternError{
		Code:     "VAULT_CORRUPTED",
		Message:  "encrypted master key is corrupted",
		ExitCode: ExitFatal,
	}

	ErrSecretsCorrupted = &LanternError{
		Code:     "SECRETS_CORRUPTED",
		Message:  "encrypted wallet secrets are corrupted",
		ExitCode: ExitFatal,
	}

	// Wallet lifecycle errors.
	ErrNoWallet = &LanternError{
		Code:     "NO_WALLET",
		Message:  "no wallet exists on this device",
		ExitCode: ExitNotFound,
	}

	ErrWalletExists = &LanternError{
		Code:     "WALLET_EXISTS",
		Message:  "a wallet already exists on this device",
		ExitCode: ExitInput,
	}

	ErrWalletNotReady = &LanternError{
		Code:     "WALLET_NOT_READY",
		Message:  "wallet is not unlocked",
		ExitCode: ExitAuth,
	}

	ErrInvalidMnemonic = &LanternError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// Node registry errors.
	ErrInsecureScheme = &LanternError{
		Code:     "INSECURE_SCHEME",
		Message:  "custom node URIs must use https",
		ExitCode: ExitInput,
	}

	ErrPortRequired = &LanternError{
		Code:     "PORT_REQUIRED",
		Message:  "custom node URIs must include an explicit port",
		ExitCode: ExitInput,
	}

	ErrUnknownNode = &LanternError{
		Code:     "UNKNOWN_NODE",
		Message:  "no node with that id is configured",
		ExitCode: ExitNotFound,
	}

	ErrNoNodesAvailable = &LanternError{
		Code:     "NO_NODES_AVAILABLE",
		Message:  "no remote nodes are available",
		ExitCode: ExitFatal,
	}

	// Transaction errors.
	ErrInvalidAddress = &LanternError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &LanternError{
		Code:     "INVALID_AMOUNT",
		Message:  "amount must be greater than zero",
		ExitCode: ExitInput,
	}

	ErrInsufficientFunds = &LanternError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient unlocked funds for transaction",
		ExitCode: ExitPermission,
	}

	ErrNetworkError = &LanternError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	// Backup errors.
	ErrNoBackupFound = &LanternError{
		Code:     "NO_BACKUP_FOUND",
		Message:  "no remote backup found for this identity",
		ExitCode: ExitNotFound,
	}

	ErrBackupDecryptFailed = &LanternError{
		Code:     "BACKUP_DECRYPT_FAILED",
		Message:  "remote backup could not be decrypted",
		ExitCode: ExitAuth,
	}

	ErrIdentityUnavailable = &LanternError{
		Code:     "IDENTITY_UNAVAILABLE",
		Message:  "no signing identity is configured",
		ExitCode: ExitNotFound,
	}

	// Config errors.
	ErrConfigInvalid = &LanternError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new LanternError with the given code and message.
func New(code, message string) *LanternError {
	return &LanternError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var le *LanternError
	if errors.As(err, &le) {
		return &LanternError{
			Code:       le.Code,
			Message:    fmt.Sprintf("%s: %s", msg, le.Message),
			Details:    le.Details,
			Suggestion: le.Suggestion,
			Cause:      err,
			ExitCode:   le.ExitCode,
		}
	}

	return &LanternError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error while
// keeping the sentinel's code and exit code, so callers can still match
// with errors.Is.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var le *LanternError
	if errors.As(err, &le) {
		return &LanternError{
			Code:       le.Code,
			Message:    le.Message,
			Details:    le.Details,
			Suggestion: le.Suggestion,
			Cause:      cause,
			ExitCode:   le.ExitCode,
		}
	}

	return fmt.Errorf("%w: %w", err, cause)
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var le *LanternError
	if errors.As(err, &le) {
		return &LanternError{
			Code:       le.Code,
			Message:    le.Message,
			Details:    details,
			Suggestion: le.Suggestion,
			Cause:      le.Cause,
			ExitCode:   le.ExitCode,
		}
	}

	return &LanternError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var le *LanternError
	if errors.As(err, &le) {
		return &LanternError{
			Code:       le.Code,
			Message:    le.Message,
			Details:    le.Details,
			Suggestion: suggestion,
			Cause:      le.Cause,
			ExitCode:   le.ExitCode,
		}
	}

	return &LanternError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var le *LanternError
	if errors.As(err, &le) {
		return le.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var le *LanternError
	if errors.As(err, &le) {
		return le.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
