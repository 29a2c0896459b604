package resolver

import (
	_ "embed"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed contexts/did_v1.jsonld
var didV1Context string

// NamespaceTyron prefixes the terms the DID v1 context does not define.
const NamespaceTyron = "https://tyron.network/ns#"

var (
	loaderOnce     sync.Once
	documentLoader *ld.CachingDocumentLoader
	errLoader      error
)

// DocumentLoader returns the shared JSON-LD loader. The DID v1 context is
// served from memory; any other context is fetched over HTTP once.
func DocumentLoader() (ld.DocumentLoader, error) {
	loaderOnce.Do(func() {
		client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
		documentLoader = ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(client))

		doc, err := ld.DocumentFromReader(strings.NewReader(didV1Context))
		if err != nil {
			errLoader = errors.Wrap(err, "failed to parse embedded DID context")
			return
		}
		documentLoader.AddDocument(ContextDIDv1, doc)
	})
	if errLoader != nil {
		return nil, errLoader
	}
	return documentLoader, nil
}

// tyronTerms defines the key properties and service fields outside the DID
// v1 vocabulary.
func tyronTerms() map[string]any {
	terms := map[string]any{
		"@vocab":            NamespaceTyron,
		"publicKeyBase58":   "https://w3id.org/security#publicKeyBase58",
		VerificationKeyType: "https://w3id.org/security#" + VerificationKeyType,
		"uri":               NamespaceTyron + "uri",
		"address":           NamespaceTyron + "address",
		"dkms":              NamespaceTyron + "dkms",
		"controllerAddress": NamespaceTyron + "controllerAddress",
	}
	for _, prop := range []string{"publicKey", "didUpdate", "didRecovery", "socialRecovery"} {
		terms[prop] = map[string]any{"@id": NamespaceTyron + prop, "@type": "@id"}
	}
	return terms
}

// LinkedData returns the document in its JSON-LD form: verification
// methods under verificationMethod, referenced by id from each purpose
// property.
func (d *DidDocument) LinkedData() map[string]any {
	out := map[string]any{
		"@context": []any{ContextDIDv1, tyronTerms()},
		"id":       d.ID,
	}
	// the controller is a contract address, not an IRI
	if d.Controller != "" {
		out["controllerAddress"] = d.Controller
	}

	props := make([]string, 0, len(d.VerificationMethods))
	for prop := range d.VerificationMethods {
		props = append(props, prop)
	}
	sort.Strings(props)

	methods := make([]any, 0, len(props))
	for _, prop := range props {
		vm := d.VerificationMethods[prop]
		m := map[string]any{
			"id":              vm.ID,
			"type":            vm.Type,
			"controller":      d.ID,
			"publicKeyBase58": vm.PublicKeyBase58,
		}
		if enc, ok := d.DKMS[prop]; ok {
			m["dkms"] = enc
		}
		methods = append(methods, m)
		out[prop] = []any{vm.ID}
	}
	if len(methods) > 0 {
		out["verificationMethod"] = methods
	}

	if len(d.Services) > 0 {
		services := make([]any, 0, len(d.Services))
		for _, s := range d.Services {
			m := map[string]any{"id": s.ID}
			if s.Type != "" {
				m["type"] = s.Type
			}
			if s.URI != "" {
				m["uri"] = s.URI
			}
			if s.Address != "" {
				m["address"] = s.Address
			}
			services = append(services, m)
		}
		out["service"] = services
	}
	return out
}

// Canonicalize returns the URDNA2015 N-Quads of the document.
func Canonicalize(doc *DidDocument) (string, error) {
	loader, err := DocumentLoader()
	if err != nil {
		return "", err
	}

	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.Algorithm = ld.AlgorithmURDNA2015
	opts.DocumentLoader = loader

	res, err := ld.NewJsonLdProcessor().Normalize(doc.LinkedData(), opts)
	if err != nil {
		return "", errors.Wrap(err, "failed to canonicalize DID document")
	}
	nquads, ok := res.(string)
	if !ok {
		return "", errors.Errorf("unexpected canonical form %T", res)
	}
	return nquads, nil
}
