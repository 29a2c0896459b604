package did

import (
	"testing"

	"github.com/pilacorp/go-ssi-sdk/errcode"
	"github.com/pilacorp/go-ssi-sdk/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testContract      = "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"
	testContractLower = "0xabcdef0123456789abcdef0123456789abcdef01"
)

func TestProcessPatchesRemoveKeys(t *testing.T) {
	res, err := ProcessPatches(testContract, []PatchModel{
		{Action: PatchRemoveKeys, IDs: []string{"update"}},
	})
	require.NoError(t, err)

	require.Len(t, res.Elements, 1)
	el := res.Elements[0]
	assert.Equal(t, ConstructorVerificationMethod, el.Constructor)
	assert.Equal(t, ActionRemove, el.Action)
	require.NotNil(t, el.Key)
	assert.Equal(t, "update", el.Key.ID)
	assert.Nil(t, el.Service)

	require.Len(t, res.UpdateDocument, 1)
	v := res.UpdateDocument[0]
	assert.Equal(t, testContractLower+".VerificationMethod", v.Constructor)
	action, ok := v.Arg(0)
	require.True(t, ok)
	assert.Equal(t, testContractLower+".Remove", action.Constructor)
	assert.Equal(t, []any{action, "update", RemovedKey, NoneMarker}, v.Arguments)
}

func TestProcessPatchesRemoveServices(t *testing.T) {
	res, err := ProcessPatches(testContract, []PatchModel{
		{Action: PatchRemoveServices, IDs: []string{"serviceA"}},
	})
	require.NoError(t, err)

	require.Len(t, res.Elements, 1)
	assert.Equal(t, DocumentElement{
		Constructor: ConstructorService,
		Action:      ActionRemove,
		Service:     &ServiceModel{ID: "serviceA"},
	}, res.Elements[0])

	require.Len(t, res.UpdateDocument, 1)
	v := res.UpdateDocument[0]
	assert.Equal(t, testContractLower+".Service", v.Constructor)
	action, ok := v.Arg(0)
	require.True(t, ok)
	assert.Equal(t, testContractLower+".Remove", action.Constructor)
	id, ok := v.StringArg(1)
	require.True(t, ok)
	assert.Equal(t, "serviceA", id)
	endpoint, ok := v.Arg(2)
	require.True(t, ok)
	assert.Equal(t, testContractLower+".Uri", endpoint.Constructor)
	assert.Equal(t, "remove", endpoint.Arguments[0])
	assert.Equal(t, "remove", endpoint.Arguments[2])
}

func TestProcessPatchesAddServices(t *testing.T) {
	res, err := ProcessPatches(testContract, []PatchModel{{
		Action: PatchAddServices,
		Services: []ServiceModel{
			{ID: "github", Endpoint: EndpointURI, Type: "website", TransferProtocol: ProtocolHTTPS, Value: "github.com/tyron"},
			{ID: "eth", Endpoint: EndpointAddress, ChainType: "Ethereum", Value: "0x00000000000000000000000000000000000000aa"},
		},
	}})
	require.NoError(t, err)
	require.Len(t, res.UpdateDocument, 2)

	uri, ok := res.UpdateDocument[0].Arg(2)
	require.True(t, ok)
	assert.Equal(t, transition.NewValue(testContractLower+".Uri",
		"website",
		transition.NewValue(testContractLower+".Https"),
		"github.com/tyron",
	), uri)

	address, ok := res.UpdateDocument[1].Arg(2)
	require.True(t, ok)
	assert.Equal(t, transition.NewValue(testContractLower+".Address",
		transition.NewValue(testContractLower+".Ethereum"),
		"0x00000000000000000000000000000000000000aa",
	), address)
}

func TestProcessPatchesKeepsOrder(t *testing.T) {
	res, err := ProcessPatches(testContract, []PatchModel{
		{Action: PatchRemoveServices, IDs: []string{"b", "a"}},
		{Action: PatchRemoveKeys, IDs: []string{"general"}},
		{Action: PatchAddServices, Services: []ServiceModel{
			{ID: "c", Endpoint: EndpointURI, Type: "t", TransferProtocol: ProtocolGit, Value: "git.example/c"},
		}},
	})
	require.NoError(t, err)

	ids := make([]string, len(res.Elements))
	for i, e := range res.Elements {
		ids[i] = e.ID()
		got, ok := res.UpdateDocument[i].StringArg(1)
		require.True(t, ok)
		assert.Equal(t, e.ID(), got)
	}
	assert.Equal(t, []string{"b", "a", "general", "c"}, ids)
}

func TestProcessPatchesErrors(t *testing.T) {
	tests := []struct {
		name    string
		patches []PatchModel
		code    errcode.Code
	}{
		{
			name:    "add services without services",
			patches: []PatchModel{{Action: PatchAddServices}},
			code:    errcode.Missing,
		},
		{
			name:    "remove services without ids",
			patches: []PatchModel{{Action: PatchRemoveServices}},
			code:    errcode.Missing,
		},
		{
			name:    "remove keys without ids",
			patches: []PatchModel{{Action: PatchRemoveKeys}},
			code:    errcode.Missing,
		},
		{
			name:    "unknown action",
			patches: []PatchModel{{Action: "AddKeys", IDs: []string{"general"}}},
			code:    errcode.CodeIncorrectPatchAction,
		},
		{
			name:    "empty action",
			patches: []PatchModel{{IDs: []string{"general"}}},
			code:    errcode.CodeIncorrectPatchAction,
		},
		{
			name: "unsupported endpoint",
			patches: []PatchModel{{Action: PatchAddServices, Services: []ServiceModel{
				{ID: "x", Endpoint: "Carrier", Value: "pigeon"},
			}}},
			code: errcode.UnsupportedElement,
		},
		{
			name: "failure after a valid patch",
			patches: []PatchModel{
				{Action: PatchRemoveKeys, IDs: []string{"general"}},
				{Action: "Rename"},
			},
			code: errcode.CodeIncorrectPatchAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ProcessPatches(testContract, tt.patches)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errcode.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestProcessPatchesEmptyLists(t *testing.T) {
	res, err := ProcessPatches(testContract, []PatchModel{
		{Action: PatchRemoveKeys, IDs: []string{}},
		{Action: PatchAddServices, Services: []ServiceModel{}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Elements)
	assert.Empty(t, res.UpdateDocument)
}

func TestParsePatches(t *testing.T) {
	patches, err := ParsePatches([]byte(`[
		{"action": "RemoveServices", "ids": ["serviceA"]},
		{"action": "AddServices", "services": [
			{"id": "web", "endpoint": "Uri", "type": "website", "transferProtocol": "Https", "value": "ssi.example"}
		]}
	]`))
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, PatchRemoveServices, patches[0].Action)
	assert.Equal(t, []string{"serviceA"}, patches[0].IDs)
	assert.Equal(t, EndpointURI, patches[1].Services[0].Endpoint)

	res, err := ProcessPatches(testContract, patches)
	require.NoError(t, err)
	assert.Len(t, res.Elements, 2)
}

func TestParsePatchesInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not an array", data: `{"action":"RemoveKeys"}`},
		{name: "missing action", data: `[{"ids":["a"]}]`},
		{name: "ids not strings", data: `[{"action":"RemoveKeys","ids":[1]}]`},
		{name: "unknown field", data: `[{"action":"RemoveKeys","keys":["a"]}]`},
		{name: "service without id", data: `[{"action":"AddServices","services":[{"value":"x"}]}]`},
		{name: "malformed", data: `[{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatches([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParsePatchesUnknownActionReachesProcessor(t *testing.T) {
	patches, err := ParsePatches([]byte(`[{"action":"AddKeys","ids":["general"]}]`))
	require.NoError(t, err)

	_, err = ProcessPatches(testContract, patches)
	assert.True(t, errcode.Is(err, errcode.CodeIncorrectPatchAction))
}
