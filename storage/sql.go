package storage

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"polycopy/model"
)

type SQL struct {
	db *gorm.DB
}

// FromSQL creates a SQL-backed ledger. Example of usage:
//
//	import "github.com/glebarez/sqlite"
//	storage, err := storage.FromSQL(sqlite.Open("copytrading.db"), &gorm.Config{})
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (Storage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&model.CopyTrade{})
	if err != nil {
		return nil, err
	}

	return &SQL{db: db}, nil
}

func (s *SQL) CreateCopyTrade(trade *model.CopyTrade) error {
	result := s.db.Create(trade)
	return result.Error
}

func (s *SQL) UpdateCopyTrade(trade *model.CopyTrade) error {
	o := model.CopyTrade{ID: trade.ID}
	s.db.First(&o)
	o = *trade
	result := s.db.Save(&o)
	return result.Error
}

func (s *SQL) CopyTrades(filters ...TradeFilter) ([]*model.CopyTrade, error) {
	trades := make([]*model.CopyTrade, 0)
	result := s.db.Order("created_at").Find(&trades)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return trades, result.Error
	}

	return lo.Filter(trades, func(trade *model.CopyTrade, _ int) bool {
		return isFulfilled(*trade, filters...)
	}), nil
}
