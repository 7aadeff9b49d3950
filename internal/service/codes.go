package service

import "strings"

// IsValidCurrencyCode checks whether a string is a 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// normalizeCode uppercases a currency code, rejecting malformed input.
func normalizeCode(code string) (string, error) {
	if !IsValidCurrencyCode(code) {
		return "", ErrInvalidCurrency
	}
	return strings.ToUpper(code), nil
}

// normalizePair normalizes both codes of a pair.
func normalizePair(source, target string) (normSource, normTarget string, err error) {
	if normSource, err = normalizeCode(source); err != nil {
		return "", "", err
	}
	if normTarget, err = normalizeCode(target); err != nil {
		return "", "", err
	}
	return normSource, normTarget, nil
}
