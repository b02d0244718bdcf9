// Package localstore is the device-side record store: one embedded SQLite
// database holding operators, products, transactions, returns and settings.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	ErrNotInitialized = errors.New("local store not initialized")
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

// MemoryPath opens a private in-memory database instead of a file
const MemoryPath = ":memory:"

var memorySeq atomic.Int64

// Store wraps the device database. The zero value and a nil *Store report
// ErrNotInitialized from every method.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates it
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == MemoryPath {
		dsn = fmt.Sprintf("file:posclient%d?mode=memory&cache=shared", memorySeq.Add(1))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// SQLite has a single writer; one connection keeps writes serialized
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models()...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.ready(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx), nil
}

// WithTx runs fn against a Store bound to one database transaction.
// fn must use only the Store it is given.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Products

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	products := []Product{}
	if err := db.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var p Product
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindProductsByCode returns every product sharing code; codes are not unique
func (s *Store) FindProductsByCode(ctx context.Context, code string) ([]Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	products := []Product{}
	if err := db.Where("code = ?", code).Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProduct inserts p or overwrites the product with the same id
func (s *Store) SaveProduct(ctx context.Context, p *Product) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, translate(err))
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transactions

func (s *Store) ListTransactions(ctx context.Context) ([]Transaction, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	txns := []Transaction{}
	if err := db.Order("created_at asc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var t Transaction
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.Model(&Transaction{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *Store) InvoiceExists(ctx context.Context, invoiceNumber string) (bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&Transaction{}).Where("invoice_number = ?", invoiceNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateTransaction inserts a new invoice; a taken invoice number yields ErrDuplicate
func (s *Store) CreateTransaction(ctx context.Context, t *Transaction) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", t.InvoiceNumber, translate(err))
	}
	return nil
}

// SaveTransaction inserts t or overwrites the transaction with the same id
func (s *Store) SaveTransaction(ctx context.Context, t *Transaction) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(t).Error; err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", t.InvoiceNumber, translate(err))
	}
	return nil
}

// Returns

func (s *Store) CreateReturn(ctx context.Context, r *Return) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(r).Error; err != nil {
		return fmt.Errorf("failed to create return: %w", translate(err))
	}
	return nil
}

func (s *Store) ListReturns(ctx context.Context) ([]Return, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	returns := []Return{}
	if err := db.Order("created_at asc").Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// Operators

func (s *Store) CreateOperator(ctx context.Context, o *Operator) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(o).Error; err != nil {
		return fmt.Errorf("failed to create operator %s: %w", o.Email, translate(err))
	}
	return nil
}

func (s *Store) GetOperator(ctx context.Context, email string) (*Operator, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var o Operator
	if err := db.Where("email = ?", email).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *Store) ListOperators(ctx context.Context) ([]Operator, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	ops := []Operator{}
	if err := db.Order("email asc").Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}

func (s *Store) SaveOperator(ctx context.Context, o *Operator) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Save(o).Error
}

// Settings

// GetSetting returns the value stored under key and whether it exists
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", false, err
	}
	var setting Setting
	err = db.Where(&Setting{Key: key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&Setting{Key: key, Value: value}).Error
}
