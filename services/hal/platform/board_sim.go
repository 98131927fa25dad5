//go:build !rp2040 && !rp2350 && !(linux && arm64 && !baremetal)

package platform

import (
	"context"

	"bikesmart-go/types"
)

func open(ctx context.Context, plan types.Plan) (*Board, error) {
	return OpenSim(ctx, plan, SimConfig{})
}
