// tokens.go implements "nexus tokens": balance and transaction history.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/log"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Show the token balance and transaction history",
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if _, err := env.requireSession(); err != nil {
		return err
	}

	ctx, cancel := env.cmdCtx()
	defer cancel()

	balance, err := env.client.TokenBalance(ctx)
	if err != nil {
		return printCachedTokens(env, err)
	}

	txs, err := env.client.TokenHistory(ctx)
	if err != nil {
		return fmt.Errorf("fetching token history: %s", api.Detail(err, err.Error()))
	}

	if env.archive != nil {
		if err := env.archive.CacheTransactions(txs); err != nil {
			log.Diag.Warn().Err(err).Msg("failed to cache transactions")
		}
	}

	fmt.Printf("Balance: %d tokens\n\n", balance)
	printTransactions(txs)
	return nil
}

// printCachedTokens falls back to the local archive when the backend is
// unreachable.
func printCachedTokens(env *cliEnv, cause error) error {
	if env.archive == nil {
		return fmt.Errorf("fetching balance: %s", api.Detail(cause, cause.Error()))
	}
	txs, err := env.archive.CachedTransactions()
	if err != nil || len(txs) == 0 {
		return fmt.Errorf("fetching balance: %s", api.Detail(cause, cause.Error()))
	}

	fmt.Println("Server unreachable; showing cached transactions.")
	fmt.Println()
	printTransactions(txs)
	return nil
}

func printTransactions(txs []api.TokenTransaction) {
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	for _, tx := range txs {
		sign := ""
		if tx.Amount > 0 {
			sign = "+"
		}
		fmt.Printf("  %s  %s%d  %-12s  %s\n",
			tx.CreatedAt.Format("2006-01-02 15:04"), sign, tx.Amount, tx.Type, tx.Detail)
	}
}
