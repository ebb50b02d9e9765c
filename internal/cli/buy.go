// buy.go implements "nexus buy": creates a token checkout session and
// prints the payment URL.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/log"
)

// tokenPackage is one purchasable tier.
type tokenPackage struct {
	Amount int
	Price  int
}

var tokenPackages = []tokenPackage{
	{100, 6},
	{500, 25},
	{1000, 45},
	{5000, 200},
}

var (
	buyAmount int
	buyMethod string
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy a token package via Stripe or Binance Pay",
	Long: `Create a checkout session for one of the token packages and print
the payment link. Run without --amount to list the packages.`,
	RunE: runBuy,
}

func runBuy(cmd *cobra.Command, args []string) error {
	if buyAmount == 0 {
		fmt.Println("Token packages:")
		for _, pkg := range tokenPackages {
			fmt.Printf("  %5d tokens  $%d USD\n", pkg.Amount, pkg.Price)
		}
		fmt.Println()
		fmt.Println("Buy one with: nexus buy --amount <tokens>")
		return nil
	}

	pkg, ok := findPackage(buyAmount)
	if !ok {
		return fmt.Errorf("no %d-token package; run 'nexus buy' to list packages", buyAmount)
	}

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

	var checkout api.CheckoutSession
	switch buyMethod {
	case "stripe":
		checkout, err = env.client.CreateCheckoutSession(ctx, pkg.Amount)
	case "binance":
		checkout, err = env.client.CreateBinanceOrder(ctx, pkg.Amount)
	default:
		return fmt.Errorf("unknown payment method %q (stripe or binance)", buyMethod)
	}
	if err != nil {
		return fmt.Errorf("creating checkout: %s", api.Detail(err, err.Error()))
	}
	if checkout.URL() == "" {
		return fmt.Errorf("server returned no checkout URL")
	}

	_ = env.events.Append(log.LogEvent{
		Event:    log.EventCheckoutCreated,
		Method:   buyMethod,
		Amount:   pkg.Amount,
		Checkout: checkout.URL(),
	})

	fmt.Printf("Open this link to buy %d tokens ($%d USD):\n", pkg.Amount, pkg.Price)
	fmt.Println(checkout.URL())
	return nil
}

func findPackage(amount int) (tokenPackage, bool) {
	for _, pkg := range tokenPackages {
		if pkg.Amount == amount {
			return pkg, true
		}
	}
	return tokenPackage{}, false
}

func init() {
	buyCmd.Flags().IntVar(&buyAmount, "amount", 0, "Token package size (100, 500, 1000 or 5000)")
	buyCmd.Flags().StringVar(&buyMethod, "method", "stripe", "Payment method: stripe or binance")
}
