package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow display updates published to Redis",
	Long:  `Prints the mirrored display values, then every update published by running sluice servers.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("redis-addr") {
			cfg.Redis.Addr, _ = cmd.Flags().GetString("redis-addr")
		}
		if !cfg.Redis.Enabled() {
			return fmt.Errorf("tail needs a Redis address (--redis-addr or redis.addr)")
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		mirror := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithKey(cfg.Redis.Key),
			redis.WithChannel(cfg.Redis.Channel),
		)
		defer mirror.Close()

		updates, err := mirror.Subscribe(sigCtx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		values, err := mirror.Values(sigCtx)
		if err != nil {
			return err
		}
		for id, v := range values {
			fmt.Fprintf(out, "%s = %s\n", id, strconv.FormatFloat(v, 'g', -1, 64))
		}

		for u := range updates {
			fmt.Fprintf(out, "%s = %s\n", u.NodeID, strconv.FormatFloat(u.Value, 'g', -1, 64))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().String("redis-addr", "", "Redis server to follow")
}
