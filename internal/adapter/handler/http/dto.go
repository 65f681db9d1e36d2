package http

import (
	"time"

	"github.com/shopspring/decimal"

	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
)

// networkRequest is the body of POST and PUT. Pointer fields detect missing required values.
type networkRequest struct {
	ChainID              *int64           `json:"chainId"`
	Name                 *string          `json:"name"`
	RPCURL               *string          `json:"rpcUrl"`
	OtherRPCURLs         []string         `json:"otherRpcUrls"`
	TestNet              *bool            `json:"testNet"`
	BlockExplorerURL     *string          `json:"blockExplorerUrl"`
	FeeMultiplier        *decimal.Decimal `json:"feeMultiplier"`
	GasLimitMultiplier   *decimal.Decimal `json:"gasLimitMultiplier"`
	DefaultSignerAddress *string          `json:"defaultSignerAddress"`
}

func (r networkRequest) toParams() (entity.NetworkParams, error) {
	var missing domain.ValidationErrors
	require := func(present bool, field string) {
		if !present {
			missing = append(missing, domain.NewValidationError(field, "is required"))
		}
	}
	require(r.ChainID != nil, entity.FieldChainID)
	require(r.Name != nil, entity.FieldName)
	require(r.RPCURL != nil, entity.FieldRPCURL)
	require(r.TestNet != nil, entity.FieldTestNet)
	require(r.BlockExplorerURL != nil, entity.FieldBlockExplorerURL)
	require(r.FeeMultiplier != nil, entity.FieldFeeMultiplier)
	require(r.GasLimitMultiplier != nil, entity.FieldGasLimitMultiplier)
	require(r.DefaultSignerAddress != nil, entity.FieldDefaultSignerAddress)
	if len(missing) > 0 {
		return entity.NetworkParams{}, missing
	}

	otherURLs := r.OtherRPCURLs
	if otherURLs == nil {
		otherURLs = []string{}
	}
	return entity.NetworkParams{
		ChainID:              *r.ChainID,
		Name:                 *r.Name,
		RPCURL:               *r.RPCURL,
		OtherRPCURLs:         otherURLs,
		TestNet:              *r.TestNet,
		BlockExplorerURL:     *r.BlockExplorerURL,
		FeeMultiplier:        *r.FeeMultiplier,
		GasLimitMultiplier:   *r.GasLimitMultiplier,
		DefaultSignerAddress: *r.DefaultSignerAddress,
	}, nil
}

// patchRequest is the body of PATCH. Omitted fields stay nil.
type patchRequest struct {
	ChainID              *int64           `json:"chainId"`
	Name                 *string          `json:"name"`
	RPCURL               *string          `json:"rpcUrl"`
	OtherRPCURLs         *[]string        `json:"otherRpcUrls"`
	TestNet              *bool            `json:"testNet"`
	BlockExplorerURL     *string          `json:"blockExplorerUrl"`
	FeeMultiplier        *decimal.Decimal `json:"feeMultiplier"`
	GasLimitMultiplier   *decimal.Decimal `json:"gasLimitMultiplier"`
	DefaultSignerAddress *string          `json:"defaultSignerAddress"`
	Active               *bool            `json:"active"`
}

func (r patchRequest) toPatch() entity.NetworkPatch {
	return entity.NetworkPatch{
		ChainID:              r.ChainID,
		Name:                 r.Name,
		RPCURL:               r.RPCURL,
		OtherRPCURLs:         r.OtherRPCURLs,
		TestNet:              r.TestNet,
		BlockExplorerURL:     r.BlockExplorerURL,
		FeeMultiplier:        r.FeeMultiplier,
		GasLimitMultiplier:   r.GasLimitMultiplier,
		DefaultSignerAddress: r.DefaultSignerAddress,
		Active:               r.Active,
	}
}

// networkResponse is the wire form of a network. Multipliers are plain JSON numbers.
type networkResponse struct {
	ID                   string    `json:"id"`
	ChainID              int64     `json:"chainId"`
	Name                 string    `json:"name"`
	RPCURL               string    `json:"rpcUrl"`
	OtherRPCURLs         []string  `json:"otherRpcUrls"`
	TestNet              bool      `json:"testNet"`
	BlockExplorerURL     string    `json:"blockExplorerUrl"`
	FeeMultiplier        float64   `json:"feeMultiplier"`
	GasLimitMultiplier   float64   `json:"gasLimitMultiplier"`
	Active               bool      `json:"active"`
	DefaultSignerAddress string    `json:"defaultSignerAddress"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func newNetworkResponse(n entity.Network) networkResponse {
	otherURLs := n.OtherRPCURLs
	if otherURLs == nil {
		otherURLs = []string{}
	}
	return networkResponse{
		ID:                   n.ID.String(),
		ChainID:              n.ChainID,
		Name:                 n.Name,
		RPCURL:               n.RPCURL,
		OtherRPCURLs:         otherURLs,
		TestNet:              n.TestNet,
		BlockExplorerURL:     n.BlockExplorerURL,
		FeeMultiplier:        n.FeeMultiplier.InexactFloat64(),
		GasLimitMultiplier:   n.GasLimitMultiplier.InexactFloat64(),
		Active:               n.Active,
		DefaultSignerAddress: n.DefaultSignerAddress,
		CreatedAt:            n.CreatedAt,
		UpdatedAt:            n.UpdatedAt,
	}
}

func newNetworkListResponse(networks []entity.Network) []networkResponse {
	out := make([]networkResponse, 0, len(networks))
	for _, n := range networks {
		out = append(out, newNetworkResponse(n))
	}
	return out
}
