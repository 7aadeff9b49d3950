package service

import "errors"

// ErrInvalidCurrency indicates a currency code that is not three letters.
var ErrInvalidCurrency = errors.New("invalid currency code format")

// ErrUnknownCurrency indicates a syntactically valid code with no currency
// record behind it.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrProviderNotFound indicates a request named a provider that does not
// exist or is inactive. No failover is attempted in that case.
var ErrProviderNotFound = errors.New("provider not found or inactive")
