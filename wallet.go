package ssi

import (
	"context"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pilacorp/go-ssi-sdk/chain"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/state"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/pkg/errors"
)

// FundsTag is the transition the recipient of native funds accepts them
// with.
const FundsTag = "AddFunds"

// walletVersion extracts the major version of a contract version string
// such as "DIDxWALLET_5.0.0". Unknown formats count as version 0.
func walletVersion(v string) int {
	if i := strings.LastIndex(v, "_"); i >= 0 {
		v = v[i+1:]
	}
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// beneficiary builds the recipient of a transfer out of from. to is an
// address or a username with an optional .domain. Wallets that predate
// NFT usernames get the username resolved to an address.
func (o *Operator) beneficiary(ctx context.Context, from string, version int, to string) (transition.Value, error) {
	if common.IsHexAddress(to) {
		return transition.Beneficiary(from, version, to, "", "")
	}
	username, domain, _ := strings.Cut(to, ".")
	if version < transition.BeneficiaryVersion {
		addr, err := o.resolver.ResolveAddress(ctx, username, domain)
		if err != nil {
			return transition.Value{}, err
		}
		return transition.Beneficiary(from, version, addr, "", "")
	}
	return transition.Beneficiary(from, version, "", username, domain)
}

// Transfer sends amount of token from the wallet contract at from to the
// recipient to. The native coin moves with SendFunds, any other supported
// token with Transfer.
func (o *Operator) Transfer(ctx context.Context, from, to, token, amount string) (*chain.TxResult, error) {
	currency, err := transition.LookupCurrency(token)
	if err != nil {
		return nil, err
	}
	scaled, err := currency.Scale(amount)
	if err != nil {
		return nil, err
	}
	from, err = chain.NormalizeAddress(from)
	if err != nil {
		return nil, err
	}

	version, err := state.FetchVersion(ctx, o.client, from)
	if err != nil && !errcode.Is(err, errcode.NotFound) {
		return nil, err
	}
	beneficiary, err := o.beneficiary(ctx, from, walletVersion(version), to)
	if err != nil {
		return nil, err
	}
	donation, donated, err := o.donation()
	if err != nil {
		return nil, err
	}

	var params []transition.Param
	if currency.Tag == transition.TagSendFunds {
		params = transition.SendFunds(from, FundsTag, beneficiary, scaled.String(), donation)
	} else {
		params = transition.Transfer(from, currency.Token, beneficiary, scaled.String(), donation)
	}
	log.L(ctx).Infof("Transferring %s %s from %s to %s", amount, currency.Token, from, to)
	return o.call(ctx, from, currency.Tag, donated, params)
}

// ConfigureSocialRecovery sets the guardians of the DID at addr. Guardians
// are hashed in order and the update key signs their concatenation. An
// empty updateKey uses the one in the KeyStore.
func (o *Operator) ConfigureSocialRecovery(ctx context.Context, addr, updateKey string, guardians []string) (*chain.TxResult, error) {
	if len(guardians) == 0 {
		return nil, errcode.New(errcode.Missing, "no guardians given")
	}
	s, err := o.fetch(ctx, addr, state.StatusCreated, state.StatusUpdated, state.StatusRecovered)
	if err != nil {
		return nil, err
	}
	if updateKey, err = o.key(s.Address, updateKey, did.PurposeUpdate); err != nil {
		return nil, err
	}

	hashes := make([]string, len(guardians))
	for i, g := range guardians {
		hashes[i] = did.GuardianHash(g)
	}
	sig, err := signHex(updateKey, did.HashGuardians(guardians))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign guardians")
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}
	return o.call(ctx, s.Address, transition.TagConfigureSocialRecovery, amount,
		transition.ConfigureSocialRecovery(hashes, sig, donation))
}

// SocialRecovery hands the DID at addr to newController with the
// signatures of its guardians.
func (o *Operator) SocialRecovery(ctx context.Context, addr, newController string, signatures []transition.GuardianSignature) (*chain.TxResult, error) {
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}
	params, err := transition.SocialRecovery(newController, signatures, donation)
	if err != nil {
		return nil, err
	}
	return o.call(ctx, addr, transition.TagSocialRecovery, amount, params)
}

// SetSsiDomain points domain of the DID at addr to a new avatar contract.
func (o *Operator) SetSsiDomain(ctx context.Context, addr, domain, avatar string) (*chain.TxResult, error) {
	if !common.IsHexAddress(avatar) {
		return nil, errcode.Newf(errcode.InvalidAddress, "invalid avatar address %q", avatar)
	}
	return o.call(ctx, addr, transition.TagSetSsiDomain, nil, transition.Dns(domain, strings.ToLower(avatar)))
}

// BuyNftUsername registers username through the wallet at addr, paying in
// currency. An empty owner keeps the username in the wallet.
func (o *Operator) BuyNftUsername(ctx context.Context, addr, username, owner, currency string) (*chain.TxResult, error) {
	if _, err := transition.LookupCurrency(currency); err != nil {
		return nil, err
	}
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}
	params, err := transition.BuyNftUsername(username, owner, currency, donation)
	if err != nil {
		return nil, err
	}
	return o.call(ctx, addr, transition.TagBuyNftUsername, amount, params)
}

// TransferNftUsername moves username held by the wallet at addr to
// newOwner, pointing it at the DID contract newDid.
func (o *Operator) TransferNftUsername(ctx context.Context, addr, username, newOwner, newDid string) (*chain.TxResult, error) {
	donation, amount, err := o.donation()
	if err != nil {
		return nil, err
	}
	params, err := transition.TransferNftUsername(username, newOwner, newDid, donation)
	if err != nil {
		return nil, err
	}
	res, err := o.call(ctx, addr, transition.TagTransferNftUsername, amount, params)
	if err != nil {
		return nil, err
	}
	o.resolver.Forget(username, "")
	o.resolver.Forget(username, state.DomainDID)
	o.resolver.Forget(username, state.DomainSSI)
	return res, nil
}

// Donate sends amount of native coin to campaign at the donation contract
// addr.
func (o *Operator) Donate(ctx context.Context, addr, campaign, amount string) (*chain.TxResult, error) {
	scaled, err := transition.ScaleAmount(amount, transition.NativeDecimals)
	if err != nil {
		return nil, err
	}
	return o.call(ctx, addr, transition.TagDonate, scaled, transition.Donate(campaign))
}
