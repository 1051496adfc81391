// Package dbtest opens throwaway sqlite databases that mirror the Postgres
// schema closely enough for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		id text PRIMARY KEY,
		email text NOT NULL UNIQUE,
		password_hash text,
		google_id text UNIQUE,
		provider text NOT NULL,
		role text NOT NULL,
		last_login_at datetime,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE profiles (
		id text PRIMARY KEY,
		user_id text NOT NULL UNIQUE,
		name text NOT NULL DEFAULT '',
		image_url text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE buyer_profiles (
		id text PRIMARY KEY,
		user_id text NOT NULL UNIQUE,
		phone_number text,
		shipping_address text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE seller_profiles (
		id text PRIMARY KEY,
		user_id text NOT NULL UNIQUE,
		shop_name text,
		shop_description text,
		shop_address text,
		phone_number text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE categories (
		id text PRIMARY KEY,
		name text NOT NULL,
		icon text NOT NULL,
		color text NOT NULL,
		image text NOT NULL,
		product_count integer NOT NULL DEFAULT 0 CHECK (product_count >= 0),
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX categories_name_lower_key ON categories (LOWER(name))`,
	`CREATE TABLE subcategories (
		id text PRIMARY KEY,
		category_id text NOT NULL,
		name text NOT NULL,
		image text,
		product_count integer NOT NULL DEFAULT 0 CHECK (product_count >= 0),
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX subcategories_category_name_lower_key ON subcategories (category_id, LOWER(name))`,
	`CREATE TABLE products (
		id text PRIMARY KEY,
		seller_profile_id text NOT NULL,
		name text NOT NULL,
		description text,
		image_url text,
		sku text UNIQUE,
		price numeric NOT NULL DEFAULT 0,
		stock integer NOT NULL DEFAULT 0 CHECK (stock >= 0),
		likes_count integer NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
		category_id text,
		subcategory_id text,
		created_at datetime,
		updated_at datetime,
		CONSTRAINT products_placement_check CHECK ((category_id IS NULL) <> (subcategory_id IS NULL))
	)`,
	`CREATE TABLE product_likes (
		id text PRIMARY KEY,
		user_id text NOT NULL,
		product_id text NOT NULL,
		created_at datetime,
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE banners (
		id text PRIMARY KEY,
		title text NOT NULL,
		description text NOT NULL,
		images text NOT NULL,
		created_at datetime
	)`,
}

// Open returns an isolated in-memory database with the full schema applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bazaar_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// MustUser inserts a user with the given role and an empty profile.
func MustUser(t testing.TB, db *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	hash := "hash"
	user := &models.User{
		Email:        fmt.Sprintf("bz_%s@example.com", uuid.NewString()),
		PasswordHash: &hash,
		Provider:     enums.AuthProviderLocal,
		Role:         role,
	}
	must(t, db.Create(user).Error, "create user")
	must(t, db.Create(&models.Profile{UserID: user.ID, Name: "Test"}).Error, "create profile")
	return user
}

// MustSeller inserts a seller user together with their seller profile.
func MustSeller(t testing.TB, db *gorm.DB) (*models.User, *models.SellerProfile) {
	t.Helper()
	user := MustUser(t, db, enums.UserRoleSeller)
	shop := "Test Shop"
	profile := &models.SellerProfile{UserID: user.ID, ShopName: &shop}
	must(t, db.Create(profile).Error, "create seller profile")
	return user, profile
}

// MustCategory inserts a category with a zero counter.
func MustCategory(t testing.TB, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Icon: "icon", Color: "#000000", Image: "img"}
	must(t, db.Create(category).Error, "create category")
	return category
}

// MustSubcategory inserts a subcategory under parent with a zero counter.
func MustSubcategory(t testing.TB, db *gorm.DB, parent uuid.UUID, name string) *models.Subcategory {
	t.Helper()
	sub := &models.Subcategory{CategoryID: parent, Name: name}
	must(t, db.Create(sub).Error, "create subcategory")
	return sub
}

// MustProduct inserts a raw product row without touching any counter.
func MustProduct(t testing.TB, db *gorm.DB, sellerProfileID uuid.UUID, categoryID, subcategoryID *uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerProfileID: sellerProfileID,
		Name:            "product " + uuid.NewString()[:8],
		Price:           decimal.NewFromInt(10),
		Stock:           1,
		CategoryID:      categoryID,
		SubcategoryID:   subcategoryID,
	}
	must(t, db.Create(product).Error, "create product")
	return product
}

// CategoryCount reads a category's stored counter.
func CategoryCount(t testing.TB, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	var count int64
	must(t, db.Raw(`SELECT product_count FROM categories WHERE id = ?`, id).Scan(&count).Error, "read category count")
	return count
}

// SubcategoryCount reads a subcategory's stored counter.
func SubcategoryCount(t testing.TB, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	var count int64
	must(t, db.Raw(`SELECT product_count FROM subcategories WHERE id = ?`, id).Scan(&count).Error, "read subcategory count")
	return count
}

// AssertConsistent fails the test when any stored counter disagrees with the
// live product population.
func AssertConsistent(t testing.TB, db *gorm.DB) {
	t.Helper()

	type drift struct {
		ID     string
		Stored int64
		Live   int64
	}

	var subs []drift
	must(t, db.Raw(`
		SELECT s.id AS id, s.product_count AS stored,
		       (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = s.id) AS live
		FROM subcategories s`).Scan(&subs).Error, "scan subcategory drift")
	for _, d := range subs {
		if d.Stored != d.Live {
			t.Errorf("subcategory %s stored=%d live=%d", d.ID, d.Stored, d.Live)
		}
	}

	var cats []drift
	must(t, db.Raw(`
		SELECT c.id AS id, c.product_count AS stored,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		       + (SELECT COALESCE(SUM(s.product_count), 0) FROM subcategories s WHERE s.category_id = c.id) AS live
		FROM categories c`).Scan(&cats).Error, "scan category drift")
	for _, d := range cats {
		if d.Stored != d.Live {
			t.Errorf("category %s stored=%d live=%d", d.ID, d.Stored, d.Live)
		}
	}
}

func must(t testing.TB, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
}
