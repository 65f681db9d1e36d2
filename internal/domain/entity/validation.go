package entity

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"network-registry/internal/domain"
)

const (
	// MaxNameLength is the maximum number of characters in a network name.
	MaxNameLength = 100
	// MaxURLLength is the maximum length of any URL field.
	MaxURLLength = 500
	// MaxOtherRPCURLs is the maximum number of secondary RPC endpoints.
	MaxOtherRPCURLs = 10
)

// Field names as exposed to API clients.
const (
	FieldChainID              = "chainId"
	FieldName                 = "name"
	FieldRPCURL               = "rpcUrl"
	FieldOtherRPCURLs         = "otherRpcUrls"
	FieldBlockExplorerURL     = "blockExplorerUrl"
	FieldFeeMultiplier        = "feeMultiplier"
	FieldGasLimitMultiplier   = "gasLimitMultiplier"
	FieldDefaultSignerAddress = "defaultSignerAddress"
	FieldTestNet              = "testNet"
	FieldActive               = "active"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidateURL checks that value is an absolute http(s) URL with a host.
func ValidateURL(field, value string) error {
	rest, ok := strings.CutPrefix(value, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(value, "http://")
	}
	if !ok {
		return domain.NewValidationError(field, "must start with http:// or https://")
	}
	if rest == "" || strings.HasPrefix(rest, "/") {
		return domain.NewValidationError(field, "must include a valid host")
	}
	if len(value) > MaxURLLength {
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %d characters", MaxURLLength))
	}
	if u, err := url.ParseRequestURI(value); err != nil || u.Host == "" {
		return domain.NewValidationError(field, "must be a valid URL")
	}
	return nil
}

// ValidateAddress checks the 0x-prefixed 40 hex digit address format.
func ValidateAddress(field, value string) error {
	if !addressPattern.MatchString(value) {
		return domain.NewValidationError(field, "invalid address format")
	}
	return nil
}

// ValidateMultiplier rejects negative multipliers.
func ValidateMultiplier(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return domain.NewValidationError(field, "must be >= 0")
	}
	return nil
}

// ValidateOtherRPCURLs checks the list length and every element.
func ValidateOtherRPCURLs(urls []string) error {
	var errs domain.ValidationErrors
	if len(urls) > MaxOtherRPCURLs {
		errs = append(errs, domain.NewValidationError(FieldOtherRPCURLs, fmt.Sprintf("max %d items", MaxOtherRPCURLs)))
	}
	for i, u := range urls {
		if err := ValidateURL(fmt.Sprintf("%s[%d]", FieldOtherRPCURLs, i), u); err != nil {
			errs = appendValidation(errs, err)
		}
	}
	return errs.OrNil()
}

// ValidateChainID requires a positive chain id.
func ValidateChainID(chainID int64) error {
	if chainID <= 0 {
		return domain.NewValidationError(FieldChainID, "must be a positive integer")
	}
	return nil
}

// ValidateName requires a non-blank name of at most MaxNameLength characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError(FieldName, "must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.NewValidationError(FieldName, fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return nil
}

// appendValidation flattens err into errs. Non-validation errors are ignored.
func appendValidation(errs domain.ValidationErrors, err error) domain.ValidationErrors {
	switch e := err.(type) {
	case nil:
		return errs
	case *domain.ValidationError:
		return append(errs, e)
	case domain.ValidationErrors:
		return append(errs, e...)
	default:
		return errs
	}
}
