package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/server"
)

type runOptions struct {
	devices   []string
	all       bool
	resource  string
	file      string
	output    string
	checkMode bool
}

var errNoDevices = errors.New("no target devices: use --device or --all with a non-empty inventory")

func (o runOptions) targets(conn server.Connector) ([]string, error) {
	if o.all {
		if len(o.devices) > 0 {
			return nil, fmt.Errorf("--all and --device are mutually exclusive")
		}
		names := conn.Devices()
		if len(names) == 0 {
			return nil, errNoDevices
		}
		return names, nil
	}
	out := slices.Clone(o.devices)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil, errNoDevices
	}
	return out, nil
}

// runResource executes doc on every target device, at most maxParallel
// at a time. Each device runs its own single pass.
func runResource(ctx context.Context, reg *resources.Registry, conn server.Connector, opts runOptions, doc []byte, maxParallel int) ([]resources.Outcome, error) {
	res, err := reg.Lookup(opts.resource)
	if err != nil {
		return nil, err
	}
	names, err := opts.targets(conn)
	if err != nil {
		return nil, err
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	outcomes := make([]resources.Outcome, len(names))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			target, err := conn.Connect(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out, err := res.Execute(groupCtx, target, doc, opts.checkMode)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
