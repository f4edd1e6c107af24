// Package db implements the company record store on top of GORM. Postgres is
// used in production; SQLite serves tests and single-node deployments.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/coronavstech/companies/internal/company/db/models"
	e "github.com/coronavstech/companies/internal/company/errors"
	domain "github.com/coronavstech/companies/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath is the database file for the sqlite driver; ":memory:" works.
	SQLitePath string
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(c.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite serializes writers; a single connection also keeps ":memory:" databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var rows []models.Company
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	companies := make([]domain.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, *rows[i].ToDomain())
	}
	return companies, nil
}

// CreateCompany inserts company and writes the stored defaults back into it.
func (r *Repository) CreateCompany(ctx context.Context, company *domain.Company) error {
	row := models.FromDomain(company)
	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	*company = *row.ToDomain()
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var row models.Company
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return row.ToDomain(), nil
}

// UpdateCompany applies update inside a transaction and returns the stored result.
func (r *Repository) UpdateCompany(ctx context.Context, update *domain.CompanyUpdate) (*domain.Company, error) {
	var updated *domain.Company
	err := r.WithTransaction(ctx, func(tx *Repository) error {
		current, err := tx.GetCompany(ctx, update.ID)
		if err != nil {
			return err
		}

		cols := models.UpdateColumns(update)
		if len(cols) > 0 {
			result := tx.db.WithContext(ctx).Model(&models.Company{}).
				Where("id = ?", update.ID).
				Updates(cols)
			if result.Error != nil {
				if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
					return e.ErrDuplicateName
				}
				return result.Error
			}
		}

		update.Apply(current)
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// CompanyExistsByName reports whether another company already uses name.
// Pass uuid.Nil as exclude when no record should be skipped.
func (r *Repository) CompanyExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Company{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	result := query.Limit(1).Count(&count)
	return count > 0, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks that the underlying connection pool is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
