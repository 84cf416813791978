package api

import (
	"github.com/ssargent/stakelist/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success" msgpack:"success"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Error   string      `json:"error,omitempty" msgpack:"error,omitempty"`
}

// AppendRequest is the body of POST /validators. Active defaults to true.
type AppendRequest struct {
	StakeBalance   uint64 `json:"stake_balance"`
	UnstakeBalance uint64 `json:"unstake_balance"`
	Active         *bool  `json:"active,omitempty"`
}

// Validator converts the request into a record
func (r AppendRequest) Validator() codec.Validator {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return codec.Validator{StakeBalance: r.StakeBalance, UnstakeBalance: r.UnstakeBalance, Active: active}
}

// ValidatorEntry is one list position; exactly one of Validator and Error is set
type ValidatorEntry struct {
	Index     uint64           `json:"index" msgpack:"index"`
	Validator *codec.Validator `json:"validator,omitempty" msgpack:"validator,omitempty"`
	Error     string           `json:"error,omitempty" msgpack:"error,omitempty"`
}

// AppendResponse reports where a record was stored
type AppendResponse struct {
	Index             uint64 `json:"index" msgpack:"index"`
	RemainingCapacity uint64 `json:"remaining_capacity" msgpack:"remaining_capacity"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string
}
