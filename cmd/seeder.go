package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/cardtracker/internal/card"
	cardrecords "github.com/frahmantamala/cardtracker/internal/card/records"
	"github.com/frahmantamala/cardtracker/internal/core/events"
	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/frahmantamala/cardtracker/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type sampleCard struct {
	Name          string
	StatementDate int
	DueDate       int
	CreditLimit   int64
	UsedAmount    int64
}

var sampleCards = []sampleCard{
	{"Vietcombank Visa", 5, 25, 50000000, 12500000},
	{"Techcombank Mastercard", 20, 10, 30000000, 4200000},
	{"TPBank EVO", 28, 31, 20000000, 0},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the record store with sample cards",
	Long:  `Seed the record store with sample cards for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		lg := logger.LoggerWrapper()
		store, err := initStore(cfg.Storage, lg)
		if err != nil {
			log.Fatalf("failed to init record store: %v", err)
		}
		defer store.Close()

		ctx := context.Background()

		if clearData {
			removed, err := clearStore(ctx, store)
			if err != nil {
				log.Fatalf("failed to clear record store: %v", err)
			}
			fmt.Printf("Cleared %d records\n", removed)
		}

		repo := cardrecords.NewCardRepository(store)
		service := card.NewService(repo, events.NewEventBus(lg), lg).WithLocation(cfg.Locale.Location())

		existing, err := repo.GetAll(ctx)
		if err != nil {
			log.Fatalf("failed to read cards: %v", err)
		}
		names := make(map[string]bool, len(existing))
		for _, c := range existing {
			names[c.Name] = true
		}

		for _, s := range sampleCards {
			if names[s.Name] {
				fmt.Println("card already exists:", s.Name)
				continue
			}
			limit := decimal.NewFromInt(s.CreditLimit)
			used := decimal.NewFromInt(s.UsedAmount)
			v, err := service.CreateCard(ctx, card.CardDTO{
				Name:          &s.Name,
				StatementDate: &s.StatementDate,
				DueDate:       &s.DueDate,
				CreditLimit:   &limit,
				UsedAmount:    &used,
			})
			if err != nil {
				log.Fatalf("failed to seed card %s: %v", s.Name, err)
			}
			fmt.Printf("Seeded card: %s (%s)\n", v.Name, v.DueLabel)
		}

		fmt.Println("Sample cards seeded successfully")
	},
}

// clearStore removes every card and payment in one batch.
func clearStore(ctx context.Context, store recordstore.Store) (int, error) {
	var mutations []recordstore.Mutation
	for _, c := range recordstore.Collections {
		records, err := store.List(ctx, c)
		if err != nil {
			return 0, err
		}
		for _, r := range records {
			mutations = append(mutations, recordstore.Remove(c, r.ID))
		}
	}
	if len(mutations) == 0 {
		return 0, nil
	}
	return len(mutations), store.Apply(ctx, mutations...)
}
