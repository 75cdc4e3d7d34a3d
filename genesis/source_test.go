package genesis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcops/node-provisioning/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSourceForSchemes(t *testing.T) {
	src, err := SourceFor("file:///var/lib/node/genesis.json", testLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	src, err = SourceFor("s3://genesis-bucket/testnet/genesis.json?region=eu-west-1", testLogger())
	require.NoError(t, err)
	assert.IsType(t, &S3Source{}, src)
	assert.Contains(t, src.Location(), "genesis-bucket")

	src, err = SourceFor("ipfs://127.0.0.1:5001/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", testLogger())
	require.NoError(t, err)
	assert.IsType(t, &IPFSSource{}, src)

	_, err = SourceFor("gopher://nope", testLogger())
	assert.Error(t, err)
}

func TestSourceForS3RequiresRegion(t *testing.T) {
	_, err := SourceFor("s3://bucket/key", testLogger())
	assert.Error(t, err)
}

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	content := []byte(`{"chain_id": "localnet-42"}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	src := NewFileSource(path, testLogger())
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestFetchDescriptorParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"chain_id": "localnet-42"}`), 0o600))

	desc, err := FetchDescriptor(context.Background(), NewFileSource(path, testLogger()), testLogger())
	require.NoError(t, err)
	assert.Equal(t, interfaces.ChainID("localnet-42"), desc.ChainID())
}

func TestParseDescriptorRejectsMissingChainID(t *testing.T) {
	_, err := ParseDescriptor([]byte(`{"genesis_time": "2026-01-01T00:00:00Z"}`))
	assert.ErrorIs(t, err, interfaces.ErrMalformedInput)

	_, err = ParseDescriptor([]byte(`not json`))
	assert.ErrorIs(t, err, interfaces.ErrMalformedInput)
}

func TestDescriptorBytesAreCopies(t *testing.T) {
	raw := []byte(`{"chain_id": "localnet-42"}`)
	desc, err := ParseDescriptor(raw)
	require.NoError(t, err)

	got := desc.Bytes()
	got[0] = 'X'
	assert.Equal(t, raw, desc.Bytes(), "descriptor content must stay pristine")
}
