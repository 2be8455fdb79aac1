package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	VaultErrorBadInput          = "VAULT_BAD_INPUT"
	VaultErrorInvalidAmount     = "VAULT_INVALID_AMOUNT"
	VaultErrorInsufficientFunds = "VAULT_INSUFFICIENT_FUNDS"
	VaultErrorReentrant         = "VAULT_REENTRANT"
	VaultErrorTransferFailed    = "VAULT_TRANSFER_FAILED"
	VaultErrorOverflow          = "VAULT_OVERFLOW"
	VaultErrorInternal          = "VAULT_INTERNAL_ERROR"
)

func vaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureVaultErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrInvalidAmount):
		return newVaultError(err.Error(), goerrors.CategoryBadInput, VaultErrorInvalidAmount)
	case errors.Is(err, ErrInvalidAccount):
		return newVaultError(err.Error(), goerrors.CategoryBadInput, VaultErrorBadInput)
	case errors.Is(err, ErrInsufficientBalance):
		return newVaultError(err.Error(), goerrors.CategoryConflict, VaultErrorInsufficientFunds)
	case errors.Is(err, ErrReentrant):
		return newVaultError(err.Error(), goerrors.CategoryConflict, VaultErrorReentrant)
	case errors.Is(err, ErrTransferFailed):
		return newVaultError(err.Error(), goerrors.CategoryExternal, VaultErrorTransferFailed)
	case errors.Is(err, ErrOverflow):
		return newVaultError(err.Error(), goerrors.CategoryBadInput, VaultErrorOverflow)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureVaultErrorEnvelope(mapped)
}

func newVaultError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureVaultErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureVaultErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = vaultHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultVaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultVaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return VaultErrorBadInput
	case goerrors.CategoryConflict:
		return VaultErrorInsufficientFunds
	case goerrors.CategoryExternal:
		return VaultErrorTransferFailed
	default:
		return VaultErrorInternal
	}
}

func vaultHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
