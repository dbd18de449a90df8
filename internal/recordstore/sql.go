package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/cardtracker/internal/core/datamodel/record"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps one row per record in the records table. Apply runs in a
// single transaction.
type SQLStore struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewSQLStore(db *gorm.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AutoMigrate creates the records table. Postgres deployments use the
// goose migrations instead.
func (s *SQLStore) AutoMigrate() error {
	return s.db.AutoMigrate(&record.Record{})
}

func (s *SQLStore) List(ctx context.Context, c Collection) ([]Record, error) {
	var rows []record.Record
	err := s.db.WithContext(ctx).
		Where("collection = ?", string(c)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{ID: row.ID, Data: json.RawMessage(row.Data)})
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, c Collection, id string) (Record, error) {
	var row record.Record
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", string(c), id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	return Record{ID: row.ID, Data: json.RawMessage(row.Data)}, nil
}

func (s *SQLStore) Apply(ctx context.Context, mutations ...Mutation) error {
	if err := validate(mutations); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mutations {
			if m.Delete {
				err := tx.Where("collection = ? AND id = ?", string(m.Collection), m.ID).
					Delete(&record.Record{}).Error
				if err != nil {
					return fmt.Errorf("delete %s/%s: %w", m.Collection, m.ID, err)
				}
				continue
			}

			row := record.Record{
				Collection: string(m.Collection),
				ID:         m.ID,
				Data:       string(m.Data),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("put %s/%s: %w", m.Collection, m.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
