package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CatalogStore = (*SQLStore)(nil)
var _ port.SalesOrderStore = (*SQLStore)(nil)

const itemColumns = `
	code, name, description, item_group, brand,
	manufacturer_product_number, proprietary_product_number,
	global_product_number, product_group_id, image_url, currency,
	is_egis_item, created_at, updated_at`

type SQLStore struct {
	sqldb   sqldb
	dialect dialect
}

func NewSQLStore(db SQLDB) SQLStore {
	return SQLStore{sqldb: db, dialect: db.dialect}
}

func (s SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}

func (s SQLStore) FindItemByMPN(
	ctx context.Context, mpn string,
) (domain.Item, error) {
	const op = "SQLStore.FindItemByMPN"

	query := `SELECT ` + itemColumns + ` FROM items WHERE mpn_key = ?;`
	row := s.sqldb.QueryRowContext(ctx, s.q(query), domain.ItemCode(mpn))
	it, err := scanItem(row)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func (s SQLStore) GetItem(ctx context.Context, code string) (domain.Item, error) {
	const op = "SQLStore.GetItem"

	query := `SELECT ` + itemColumns + ` FROM items WHERE code = ?;`
	row := s.sqldb.QueryRowContext(ctx, s.q(query), code)
	it, err := scanItem(row)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func scanItem(row *sql.Row) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(
		&it.Code, &it.Name, &it.Description, &it.ItemGroup, &it.Brand,
		&it.ManufacturerProductNumber, &it.ProprietaryProductNumber,
		&it.GlobalProductNumber, &it.ProductGroupID, &it.ImageURL, &it.Currency,
		&it.IsEGISItem, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, err
	}
	return it, nil
}

func (s SQLStore) CreateItem(ctx context.Context, it domain.Item) error {
	const op = "SQLStore.CreateItem"

	query := `
		INSERT INTO items (` + itemColumns + `, mpn_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err := s.sqldb.ExecContext(ctx, s.q(query),
		it.Code, it.Name, it.Description, it.ItemGroup, it.Brand,
		it.ManufacturerProductNumber, it.ProprietaryProductNumber,
		it.GlobalProductNumber, it.ProductGroupID, it.ImageURL, it.Currency,
		it.IsEGISItem, it.CreatedAt.UTC(), it.UpdatedAt.UTC(),
		domain.ItemCode(it.ManufacturerProductNumber),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return fmt.Errorf("%s: %w: item %q", op, ErrAlreadyExists, it.Code)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s SQLStore) UpdateItem(ctx context.Context, it domain.Item) error {
	const op = "SQLStore.UpdateItem"

	query := `
		UPDATE items SET
			name = ?, description = ?, item_group = ?, brand = ?,
			manufacturer_product_number = ?, mpn_key = ?,
			proprietary_product_number = ?, global_product_number = ?,
			product_group_id = ?, image_url = ?, currency = ?,
			is_egis_item = ?, updated_at = ?
		WHERE code = ?;`

	res, err := s.sqldb.ExecContext(ctx, s.q(query),
		it.Name, it.Description, it.ItemGroup, it.Brand,
		it.ManufacturerProductNumber, domain.ItemCode(it.ManufacturerProductNumber),
		it.ProprietaryProductNumber, it.GlobalProductNumber,
		it.ProductGroupID, it.ImageURL, it.Currency,
		it.IsEGISItem, it.UpdatedAt.UTC(),
		it.Code,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

func (s SQLStore) GetBrand(ctx context.Context, name string) (domain.Brand, error) {
	const op = "SQLStore.GetBrand"

	query := `SELECT name, manufacturer_id FROM brands WHERE name = ?;`

	var b domain.Brand
	err := s.sqldb.QueryRowContext(ctx, s.q(query), name).Scan(
		&b.Name, &b.ManufacturerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Brand{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (s SQLStore) CreateBrand(ctx context.Context, b domain.Brand) error {
	const op = "SQLStore.CreateBrand"

	query := `INSERT INTO brands (name, manufacturer_id) VALUES (?, ?);`
	_, err := s.sqldb.ExecContext(ctx, s.q(query), b.Name, b.ManufacturerID)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return fmt.Errorf("%s: %w: brand %q", op, ErrAlreadyExists, b.Name)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s SQLStore) ItemGroupExists(ctx context.Context, name string) (bool, error) {
	const op = "SQLStore.ItemGroupExists"
	ok, err := s.exists(ctx, `SELECT 1 FROM item_groups WHERE name = ?;`, name)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s SQLStore) CreateItemGroup(ctx context.Context, g domain.ItemGroup) error {
	const op = "SQLStore.CreateItemGroup"

	query := `INSERT INTO item_groups (name, parent) VALUES (?, ?);`
	_, err := s.sqldb.ExecContext(ctx, s.q(query), g.Name, g.Parent)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return fmt.Errorf("%s: %w: item group %q", op, ErrAlreadyExists, g.Name)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s SQLStore) PriceListExists(ctx context.Context, name string) (bool, error) {
	const op = "SQLStore.PriceListExists"
	ok, err := s.exists(ctx, `SELECT 1 FROM price_lists WHERE name = ?;`, name)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s SQLStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.sqldb.QueryRowContext(ctx, s.q(query), args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s SQLStore) GetPrice(
	ctx context.Context, itemCode, priceList string,
) (domain.PriceEntry, error) {
	const op = "SQLStore.GetPrice"

	query := `
		SELECT item_code, price_list, rate, currency, updated_at
		FROM item_prices
		WHERE item_code = ? AND price_list = ?;`

	var p domain.PriceEntry
	err := s.sqldb.QueryRowContext(ctx, s.q(query), itemCode, priceList).Scan(
		&p.ItemCode, &p.PriceList, &p.Rate, &p.Currency, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PriceEntry{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.PriceEntry{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s SQLStore) UpsertPrice(ctx context.Context, p domain.PriceEntry) error {
	const op = "SQLStore.UpsertPrice"

	query := `
		INSERT INTO item_prices (item_code, price_list, rate, currency, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	switch s.dialect {
	case dialectMySQL:
		query += `
		ON DUPLICATE KEY UPDATE
			rate = VALUES(rate),
			currency = VALUES(currency),
			updated_at = VALUES(updated_at);`
	default:
		query += `
		ON CONFLICT (item_code, price_list) DO UPDATE SET
			rate = EXCLUDED.rate,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at;`
	}

	_, err := s.sqldb.ExecContext(ctx, s.q(query),
		p.ItemCode, p.PriceList, p.Rate, p.Currency, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s SQLStore) GetSalesOrder(
	ctx context.Context, id string,
) (o domain.SalesOrder, err error) {
	const op = "SQLStore.GetSalesOrder"
	log := slog.With("op", op)

	query := `
		SELECT id, customer, status, currency
		FROM sales_orders
		WHERE id = ?;`

	err = s.sqldb.QueryRowContext(ctx, s.q(query), id).Scan(
		&o.ID, &o.Customer, &o.Status, &o.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	query = `
		SELECT idx, item_code, qty, rate, is_egis_item
		FROM sales_order_lines
		WHERE order_id = ?
		ORDER BY idx ASC;`

	rows, err := s.sqldb.QueryContext(ctx, s.q(query), id)
	if err != nil {
		return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		var l domain.SalesOrderLine
		if err := rows.Scan(
			&l.Idx, &l.ItemCode, &l.Qty, &l.Rate, &l.IsEGISItem,
		); err != nil {
			return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return domain.SalesOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

func (s SQLStore) SetLineRate(
	ctx context.Context, orderID string, idx int, rate decimal.Decimal,
) error {
	const op = "SQLStore.SetLineRate"

	query := `
		UPDATE sales_order_lines SET rate = ?
		WHERE order_id = ? AND idx = ?;`

	res, err := s.sqldb.ExecContext(ctx, s.q(query), rate, orderID, idx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
