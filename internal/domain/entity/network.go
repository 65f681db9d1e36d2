package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"network-registry/internal/domain"
)

// Network represents a registered blockchain network configuration.
type Network struct {
	ID                   uuid.UUID
	ChainID              int64
	Name                 string
	RPCURL               string
	OtherRPCURLs         []string
	TestNet              bool
	BlockExplorerURL     string
	FeeMultiplier        decimal.Decimal
	GasLimitMultiplier   decimal.Decimal
	Active               bool
	DefaultSignerAddress string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NetworkParams is the full set of caller-supplied fields of a network.
// It carries neither the identifier, the timestamps nor the activation flag.
type NetworkParams struct {
	ChainID              int64
	Name                 string
	RPCURL               string
	OtherRPCURLs         []string
	TestNet              bool
	BlockExplorerURL     string
	FeeMultiplier        decimal.Decimal
	GasLimitMultiplier   decimal.Decimal
	DefaultSignerAddress string
}

// Validate runs every field validator and reports all failures at once.
func (p NetworkParams) Validate() error {
	var errs domain.ValidationErrors
	errs = appendValidation(errs, ValidateChainID(p.ChainID))
	errs = appendValidation(errs, ValidateName(p.Name))
	errs = appendValidation(errs, ValidateURL(FieldRPCURL, p.RPCURL))
	errs = appendValidation(errs, ValidateOtherRPCURLs(p.OtherRPCURLs))
	errs = appendValidation(errs, ValidateURL(FieldBlockExplorerURL, p.BlockExplorerURL))
	errs = appendValidation(errs, ValidateMultiplier(FieldFeeMultiplier, p.FeeMultiplier))
	errs = appendValidation(errs, ValidateMultiplier(FieldGasLimitMultiplier, p.GasLimitMultiplier))
	errs = appendValidation(errs, ValidateAddress(FieldDefaultSignerAddress, p.DefaultSignerAddress))
	return errs.OrNil()
}

// NetworkPatch is a sparse update. A nil field is left untouched.
type NetworkPatch struct {
	ChainID              *int64
	Name                 *string
	RPCURL               *string
	OtherRPCURLs         *[]string
	TestNet              *bool
	BlockExplorerURL     *string
	FeeMultiplier        *decimal.Decimal
	GasLimitMultiplier   *decimal.Decimal
	DefaultSignerAddress *string
	Active               *bool
}

// Validate checks only the fields present in the patch.
func (p NetworkPatch) Validate() error {
	var errs domain.ValidationErrors
	if p.ChainID != nil {
		errs = appendValidation(errs, ValidateChainID(*p.ChainID))
	}
	if p.Name != nil {
		errs = appendValidation(errs, ValidateName(*p.Name))
	}
	if p.RPCURL != nil {
		errs = appendValidation(errs, ValidateURL(FieldRPCURL, *p.RPCURL))
	}
	if p.OtherRPCURLs != nil {
		errs = appendValidation(errs, ValidateOtherRPCURLs(*p.OtherRPCURLs))
	}
	if p.BlockExplorerURL != nil {
		errs = appendValidation(errs, ValidateURL(FieldBlockExplorerURL, *p.BlockExplorerURL))
	}
	if p.FeeMultiplier != nil {
		errs = appendValidation(errs, ValidateMultiplier(FieldFeeMultiplier, *p.FeeMultiplier))
	}
	if p.GasLimitMultiplier != nil {
		errs = appendValidation(errs, ValidateMultiplier(FieldGasLimitMultiplier, *p.GasLimitMultiplier))
	}
	if p.DefaultSignerAddress != nil {
		errs = appendValidation(errs, ValidateAddress(FieldDefaultSignerAddress, *p.DefaultSignerAddress))
	}
	return errs.OrNil()
}

// IsEmpty reports whether the patch carries no field at all.
func (p NetworkPatch) IsEmpty() bool {
	return p == NetworkPatch{}
}

// NewNetwork validates params and only then assigns a fresh id and creation timestamps.
func NewNetwork(params NetworkParams, now time.Time) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Network{
		ID:                   uuid.New(),
		ChainID:              params.ChainID,
		Name:                 params.Name,
		RPCURL:               params.RPCURL,
		OtherRPCURLs:         cloneURLs(params.OtherRPCURLs),
		TestNet:              params.TestNet,
		BlockExplorerURL:     params.BlockExplorerURL,
		FeeMultiplier:        params.FeeMultiplier,
		GasLimitMultiplier:   params.GasLimitMultiplier,
		Active:               true,
		DefaultSignerAddress: params.DefaultSignerAddress,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// WithParams replaces every mutable field except Active. ID and CreatedAt are kept.
func (n Network) WithParams(params NetworkParams, now time.Time) Network {
	n.ChainID = params.ChainID
	n.Name = params.Name
	n.RPCURL = params.RPCURL
	n.OtherRPCURLs = cloneURLs(params.OtherRPCURLs)
	n.TestNet = params.TestNet
	n.BlockExplorerURL = params.BlockExplorerURL
	n.FeeMultiplier = params.FeeMultiplier
	n.GasLimitMultiplier = params.GasLimitMultiplier
	n.DefaultSignerAddress = params.DefaultSignerAddress
	n.UpdatedAt = now
	return n
}

// WithPatch overwrites the fields present in patch, including Active.
func (n Network) WithPatch(patch NetworkPatch, now time.Time) Network {
	n.OtherRPCURLs = cloneURLs(n.OtherRPCURLs)
	if patch.ChainID != nil {
		n.ChainID = *patch.ChainID
	}
	if patch.Name != nil {
		n.Name = *patch.Name
	}
	if patch.RPCURL != nil {
		n.RPCURL = *patch.RPCURL
	}
	if patch.OtherRPCURLs != nil {
		n.OtherRPCURLs = cloneURLs(*patch.OtherRPCURLs)
	}
	if patch.TestNet != nil {
		n.TestNet = *patch.TestNet
	}
	if patch.BlockExplorerURL != nil {
		n.BlockExplorerURL = *patch.BlockExplorerURL
	}
	if patch.FeeMultiplier != nil {
		n.FeeMultiplier = *patch.FeeMultiplier
	}
	if patch.GasLimitMultiplier != nil {
		n.GasLimitMultiplier = *patch.GasLimitMultiplier
	}
	if patch.DefaultSignerAddress != nil {
		n.DefaultSignerAddress = *patch.DefaultSignerAddress
	}
	if patch.Active != nil {
		n.Active = *patch.Active
	}
	n.UpdatedAt = now
	return n
}

// Deactivate returns the soft-deleted state of the network.
func (n Network) Deactivate(now time.Time) Network {
	n.OtherRPCURLs = cloneURLs(n.OtherRPCURLs)
	n.Active = false
	n.UpdatedAt = now
	return n
}

// Clone returns a deep copy safe to hand out of a store.
func (n Network) Clone() Network {
	n.OtherRPCURLs = cloneURLs(n.OtherRPCURLs)
	return n
}

// cloneURLs always returns a non-nil slice so empty lists serialize as [].
func cloneURLs(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return slices.Clone(urls)
}
