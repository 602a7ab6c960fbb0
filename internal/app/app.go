package app

import (
	"github.com/spf13/cobra"

	"github.com/dehvCurtis/rustdefend/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "rustdefend",
		Short:         "Static analyzer for Rust smart contracts (Solana, CosmWasm, NEAR, ink!)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddCommands(root)
	return root
}
