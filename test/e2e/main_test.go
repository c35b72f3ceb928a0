//go:build e2e

// Package e2e_test exercises the apply and verify workflows against a real
// SONiC device. Gated behind the e2e build tag; set FABRICLAB_CONFIG to a
// fabric YAML file pointing at a lab switch:
//
//	FABRICLAB_CONFIG=lab/fabric.yaml go test -tags e2e ./test/e2e/
package e2e_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fabriclab-net/fabriclab/pkg/config"
	"github.com/fabriclab-net/fabriclab/pkg/remote"
	"github.com/fabriclab-net/fabriclab/pkg/scenario"
)

func labFabric(t *testing.T) *config.Fabric {
	t.Helper()
	path := os.Getenv("FABRICLAB_CONFIG")
	if path == "" {
		t.Skip("FABRICLAB_CONFIG not set; skipping lab test")
	}
	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading lab config: %v", err)
	}
	return f
}

// labRunner connects to the lab device and returns a runner. The session
// is closed automatically when the test ends.
func labRunner(t *testing.T) *scenario.Runner {
	t.Helper()
	fab := labFabric(t)

	session, err := remote.Connect(fab.Target())
	if err != nil {
		t.Fatalf("connecting to %s: %v", fab.Device.Host, err)
	}
	t.Cleanup(func() { session.Close() })

	return scenario.NewRunner(fab, session)
}

func labContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	t.Cleanup(cancel)
	return ctx
}
