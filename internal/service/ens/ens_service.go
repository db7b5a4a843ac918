package ens

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anbusan19/nominal/internal/chain"
	"github.com/anbusan19/nominal/pkg/apperr"
	"github.com/anbusan19/nominal/pkg/utils"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Config carries the naming-service contract addresses and the
// server-held wallet used for subname issuance.
type Config struct {
	RegistryAddress string
	ResolverAddress string
	WrapperAddress  string
	WalletID        string
	// WalletAddress is the on-chain address of the server wallet; it
	// must own a parent name before subnames can be issued under it.
	WalletAddress string
}

// Service is the identity resolver: every read and write against the
// external naming service goes through here.
type Service struct {
	gateway chain.Gateway
	cfg     Config
	logger  *slog.Logger
}

func NewService(gateway chain.Gateway, cfg Config, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, cfg: cfg, logger: logger}
}

// ResolveAddress returns the address the name currently resolves to,
// or "" if no address record is set. Side-effect free.
func (s *Service) ResolveAddress(ctx context.Context, name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}

	out, err := s.gateway.Query(ctx, chain.QueryRequest{
		ContractAddress:   s.cfg.ResolverAddress,
		FunctionSignature: "addr(bytes32)",
		Parameters:        []interface{}{NodeHex(Namehash(normalized))},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "resolve address", err)
	}
	if len(out) == 0 || out[0] == zeroAddress || out[0] == "" {
		return "", nil
	}
	return out[0], nil
}

// Owner returns the registry's recorded owner of the name's node, or
// "" when the node is unowned.
func (s *Service) Owner(ctx context.Context, name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}

	out, err := s.gateway.Query(ctx, chain.QueryRequest{
		ContractAddress:   s.cfg.RegistryAddress,
		FunctionSignature: "owner(bytes32)",
		Parameters:        []interface{}{NodeHex(Namehash(normalized))},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, "query owner", err)
	}
	if len(out) == 0 || out[0] == zeroAddress {
		return "", nil
	}
	return out[0], nil
}

// VerifyOwnership checks whether the address controls the domain and
// also returns the actual recorded owner.
func (s *Service) VerifyOwnership(ctx context.Context, domain, address string) (bool, string, error) {
	owner, err := s.Owner(ctx, domain)
	if err != nil {
		return false, "", err
	}
	return owner != "" && strings.EqualFold(owner, address), owner, nil
}

// IssueSubname delegates label.parent to ownerAddress through the name
// wrapper and waits for finality. The server wallet must control the
// parent; the check runs before any transaction is submitted.
func (s *Service) IssueSubname(ctx context.Context, parent, label, ownerAddress string) (string, error) {
	normalizedParent, err := Normalize(parent)
	if err != nil {
		return "", err
	}
	normalizedLabel, err := NormalizeLabel(label)
	if err != nil {
		return "", err
	}
	if !utils.IsHexAddress(ownerAddress) {
		return "", apperr.Newf(apperr.KindValidation, "invalid owner address %q", ownerAddress)
	}

	owner, err := s.Owner(ctx, normalizedParent)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(owner, s.cfg.WalletAddress) && !strings.EqualFold(owner, s.cfg.WrapperAddress) {
		return "", apperr.Newf(apperr.KindConflict,
			"server wallet does not control parent name %s (owner: %s)", normalizedParent, owner)
	}

	txID, err := s.gateway.Execute(ctx, chain.ExecutionRequest{
		WalletID:          s.cfg.WalletID,
		ContractAddress:   s.cfg.WrapperAddress,
		FunctionSignature: "setSubnodeRecord(bytes32,string,address,address,uint64,uint32,uint64)",
		Parameters: []interface{}{
			NodeHex(Namehash(normalizedParent)),
			normalizedLabel,
			ownerAddress,
			s.cfg.ResolverAddress,
			"0", // ttl
			"0", // fuses
			"0", // expiry: none
		},
		RefID: fmt.Sprintf("subname:%s.%s", normalizedLabel, normalizedParent),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindOf(err), "submit subname record", err)
	}

	if _, err := s.gateway.WaitForConfirmation(ctx, txID); err != nil {
		return "", err
	}

	subname := normalizedLabel + "." + normalizedParent
	s.logger.Info("subname issued",
		slog.String("subname", subname),
		slog.String("owner", ownerAddress))
	return subname, nil
}
