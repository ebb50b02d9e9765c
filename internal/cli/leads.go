// leads.go implements "nexus leads": captured leads sorted hottest first.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/leads"
	"github.com/nexus-ai/nexus/internal/log"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List captured leads with their scores",
	RunE:  runLeads,
}

func runLeads(cmd *cobra.Command, args []string) error {
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

	fromCache := false
	ls, err := env.client.Leads(ctx)
	if err != nil {
		if env.archive == nil {
			return fmt.Errorf("fetching leads: %s", api.Detail(err, err.Error()))
		}
		cached, cacheErr := env.archive.CachedLeads()
		if cacheErr != nil || len(cached) == 0 {
			return fmt.Errorf("fetching leads: %s", api.Detail(err, err.Error()))
		}
		ls = cached
		fromCache = true
	} else if env.archive != nil {
		if err := env.archive.CacheLeads(ls); err != nil {
			log.Diag.Warn().Err(err).Msg("failed to cache leads")
		}
	}

	if len(ls) == 0 {
		fmt.Println("No leads captured yet.")
		return nil
	}

	if fromCache {
		fmt.Println("Server unreachable; showing cached leads.")
		fmt.Println()
	}

	leads.SortByScore(ls)
	for _, l := range ls {
		score := leads.Score(l)
		fmt.Printf("  %-4s %2d  %-20s %-28s %s\n",
			levelLabel(leads.LevelFor(score)), score, l.Name, l.Email, l.Message)
	}
	return nil
}

func levelLabel(level leads.Level) string {
	switch level {
	case leads.Hot:
		return "HOT"
	case leads.Warm:
		return "WARM"
	default:
		return "COLD"
	}
}
