// Package resolver turns DID contract state into DID documents.
//
// A DID is resolved from its contract address, its did:tyron string, or a
// username.domain registered in the init contract. Contract state is always
// read fresh; domain lookups are only cached when WithCacheSize is set.
package resolver

import (
	"context"

	"github.com/pilacorp/go-ssi-sdk/chain"
	"github.com/pilacorp/go-ssi-sdk/config"
	"github.com/pilacorp/go-ssi-sdk/did"
	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/log"
	"github.com/pilacorp/go-ssi-sdk/state"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Accept values of Resolve.
const (
	AcceptDocument = "application/did+json"
	AcceptResult   = "application/did+json;profile='https://w3c-ccg.github.io/did-resolution'"
)

// ResolutionMetadata describes where and how a document was read.
type ResolutionMetadata struct {
	Network   config.Network `json:"network"`
	Address   string         `json:"address"`
	Version   string         `json:"version,omitempty"`
	Status    state.Status   `json:"status,omitempty"`
	Guardians []string       `json:"guardians"`
	Balance   string         `json:"balance"`
}

// DocumentMetadata describes the returned document.
type DocumentMetadata struct {
	ContentType string `json:"contentType"`
}

// ResolutionResult is the answer to an AcceptResult resolution.
type ResolutionResult struct {
	ID                 string             `json:"id"`
	ResolutionMetadata ResolutionMetadata `json:"resolutionMetadata"`
	Document           *DidDocument       `json:"document"`
	Metadata           DocumentMetadata   `json:"metadata"`
}

// Resolver reads DID documents from one network.
type Resolver struct {
	client      *chain.Client
	network     config.Network
	initAddress string
	cacheSize   int
	domains     *addressCache
}

type Option func(*Resolver)

// WithCacheSize keeps up to n domain lookups in an LRU. Cached entries are
// not refreshed when a username moves on chain; Forget evicts one. Zero,
// the default, disables the cache.
func WithCacheSize(n int) Option {
	return func(r *Resolver) {
		r.cacheSize = n
	}
}

// WithNetwork overrides the network named in generated DIDs.
func WithNetwork(n config.Network) Option {
	return func(r *Resolver) {
		r.network = n
	}
}

// WithInitAddress overrides the init contract used for usernames.
func WithInitAddress(addr string) Option {
	return func(r *Resolver) {
		r.initAddress = addr
	}
}

// New returns a resolver reading through c. Network and init contract
// default to the client configuration.
func New(c *chain.Client, opts ...Option) *Resolver {
	cfg := c.Config()
	r := &Resolver{
		client:      c,
		network:     cfg.Network,
		initAddress: cfg.InitAddress,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheSize > 0 {
		r.domains = newAddressCache(r.cacheSize)
	}
	return r
}

// Network returns the network the resolver reads from.
func (r *Resolver) Network() config.Network {
	return r.network
}

// address returns the contract address of a DID string or an address.
func (r *Resolver) address(didOrAddr string) (string, error) {
	if !did.IsDID(didOrAddr) {
		return chain.NormalizeAddress(didOrAddr)
	}
	id, err := did.Parse(didOrAddr)
	if err != nil {
		return "", err
	}
	switch r.network {
	case config.Mainnet, config.Testnet:
		if id.Network != r.network.Short() {
			return "", errcode.Newf(errcode.InvalidID, "%s is not a %s DID", didOrAddr, r.network)
		}
	}
	return id.Address, nil
}

// documentID is the DID the contract stores, or the one derived from its
// address before the DID is set.
func (r *Resolver) documentID(s *state.DidState) string {
	if s.DID != "" {
		return s.DID
	}
	return did.New(r.network, s.Address).String()
}

// Resolve reads a DID and returns a *DidDocument for AcceptDocument or a
// *ResolutionResult for AcceptResult. An empty accept means
// AcceptDocument.
func (r *Resolver) Resolve(ctx context.Context, didOrAddr, accept string) (any, error) {
	switch accept {
	case "", AcceptDocument:
		return r.Read(ctx, didOrAddr)
	case AcceptResult:
		return r.ResolveResult(ctx, didOrAddr)
	}
	return nil, errors.Errorf("unsupported accept type %q", accept)
}

// Read returns the DID document of didOrAddr.
func (r *Resolver) Read(ctx context.Context, didOrAddr string) (*DidDocument, error) {
	addr, err := r.address(didOrAddr)
	if err != nil {
		return nil, err
	}
	s, err := state.Fetch(ctx, r.client, addr)
	if err != nil {
		return nil, err
	}
	return Read(s, r.documentID(s))
}

// ResolveResult returns the document of didOrAddr with its resolution
// metadata. State and balance are read concurrently.
func (r *Resolver) ResolveResult(ctx context.Context, didOrAddr string) (*ResolutionResult, error) {
	addr, err := r.address(didOrAddr)
	if err != nil {
		return nil, err
	}

	var (
		s       *state.DidState
		balance *chain.Balance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s, err = state.Fetch(gctx, r.client, addr)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = r.client.GetBalance(gctx, addr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	id := r.documentID(s)
	doc, err := Read(s, id)
	if err != nil {
		return nil, err
	}
	guardians := s.Guardians
	if guardians == nil {
		guardians = []string{}
	}
	return &ResolutionResult{
		ID: id,
		ResolutionMetadata: ResolutionMetadata{
			Network:   r.network,
			Address:   s.Address,
			Version:   s.Version,
			Status:    s.Status,
			Guardians: guardians,
			Balance:   balance.Balance,
		},
		Document: doc,
		Metadata: DocumentMetadata{ContentType: AcceptDocument},
	}, nil
}

// ResolveAddress returns the contract address of username.domain. The
// did and ssi domains, or an empty one, name the DID contract itself.
func (r *Resolver) ResolveAddress(ctx context.Context, username, domain string) (string, error) {
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	key := username + "." + domain
	if r.domains != nil {
		if addr, ok := r.domains.Get(key); ok {
			return addr, nil
		}
	}

	addr, err := state.ResolveDomain(ctx, r.client, r.initAddress, username, domain)
	if err != nil {
		return "", err
	}
	log.L(ctx).Debugf("Resolved %s to %s", key, addr)
	if r.domains != nil {
		r.domains.Set(key, addr)
	}
	return addr, nil
}

// ResolveUsername returns the DID document of username.domain.
func (r *Resolver) ResolveUsername(ctx context.Context, username, domain string) (*DidDocument, error) {
	addr, err := r.ResolveAddress(ctx, username, domain)
	if err != nil {
		return nil, err
	}
	return r.Read(ctx, addr)
}

// Forget drops a cached domain lookup, after the user points it elsewhere.
func (r *Resolver) Forget(username, domain string) {
	if r.domains != nil {
		r.domains.Delete(username + "." + domain)
	}
}
