package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/stakelist/pkg/di"
)

func withContainer(ctx context.Context, c *di.Container) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, containerKey{}, c)
}

func containerFrom(cmd *cobra.Command) (*di.Container, bool) {
	if cmd.Context() == nil {
		return nil, false
	}
	c, ok := cmd.Context().Value(containerKey{}).(*di.Container)
	return c, ok
}

func containerOrErr(cmd *cobra.Command) (*di.Container, error) {
	c, ok := containerFrom(cmd)
	if !ok {
		return nil, fmt.Errorf("container not initialized")
	}
	return c, nil
}
