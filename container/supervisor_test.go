package container

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	calls  []string
	runs   []Spec
	runErr error
}

func (f *fakeRuntime) Remove(ctx context.Context, name string) error {
	f.calls = append(f.calls, "remove:"+name)
	return nil
}

func (f *fakeRuntime) Run(ctx context.Context, spec Spec) error {
	f.calls = append(f.calls, "run:"+spec.Name)
	f.runs = append(f.runs, spec)
	return f.runErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureStopsThenStartsExactlyOnce(t *testing.T) {
	rt := &fakeRuntime{}
	s := &Supervisor{Runtime: rt, Log: testLogger()}

	spec := Spec{Name: "mpc-node", Image: "registry.example.com/mpc-node:v1"}
	require.NoError(t, s.Ensure(context.Background(), spec))

	assert.Equal(t, []string{"remove:mpc-node", "run:mpc-node"}, rt.calls)
	require.Len(t, rt.runs, 1)
	assert.Equal(t, spec, rt.runs[0])
}

func TestEnsureIsSafeToRerun(t *testing.T) {
	rt := &fakeRuntime{}
	s := &Supervisor{Runtime: rt, Log: testLogger()}
	spec := Spec{Name: "mpc-node", Image: "img"}

	require.NoError(t, s.Ensure(context.Background(), spec))
	require.NoError(t, s.Ensure(context.Background(), spec))
	assert.Equal(t, []string{"remove:mpc-node", "run:mpc-node", "remove:mpc-node", "run:mpc-node"}, rt.calls)
}

func TestEnsurePropagatesRunFailure(t *testing.T) {
	rt := &fakeRuntime{runErr: errors.New("image pull failed")}
	s := &Supervisor{Runtime: rt, Log: testLogger()}

	err := s.Ensure(context.Background(), Spec{Name: "mpc-node", Image: "img"})
	assert.ErrorContains(t, err, "image pull failed")
}

func TestRunArgsShape(t *testing.T) {
	spec := Spec{
		Name:  "mpc-node",
		Image: "img:tag",
		Env: map[string]string{
			"MPC_ACCOUNT_ID": "signer-0.testnet",
			"CHAIN_RPC_URL":  "http://rpc:3030",
		},
		Mounts: []Mount{{Source: "/var/lib/mpc", Target: "/home/mpc"}},
		Args:   []string{"start"},
	}

	args := runArgs(spec)
	assert.Equal(t, "run", args[0])
	assert.Contains(t, args, "--env=CHAIN_RPC_URL=http://rpc:3030")
	assert.Contains(t, args, "--env=MPC_ACCOUNT_ID=signer-0.testnet")
	assert.Contains(t, args, "--mount=type=bind,source=/var/lib/mpc,target=/home/mpc")
	assert.Equal(t, "start", args[len(args)-1])

	// Env flags come out sorted for deterministic invocations.
	var envIdx []int
	for i, a := range args {
		if len(a) > 6 && a[:6] == "--env=" {
			envIdx = append(envIdx, i)
		}
	}
	require.Len(t, envIdx, 2)
	assert.Less(t, envIdx[0], envIdx[1])
	assert.Contains(t, args[envIdx[0]], "CHAIN_RPC_URL")
}
