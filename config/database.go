package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS households (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(255) NOT NULL,
			owner_id UUID REFERENCES users(id) ON DELETE CASCADE,
			primary_budget_id UUID,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS household_members (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			role VARCHAR(50) NOT NULL DEFAULT 'MEMBER',
			joined_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(household_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			icon VARCHAR(100),
			color VARCHAR(50),
			parent_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			period VARCHAR(50) NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budget_categories (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			budget_id UUID REFERENCES budgets(id) ON DELETE CASCADE,
			category_id UUID REFERENCES categories(id) ON DELETE CASCADE,
			allocated_amount NUMERIC(12,2) NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			UNIQUE(budget_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS recurring_expenses (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			description VARCHAR(255) NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			type VARCHAR(50) NOT NULL DEFAULT 'EXPENSE',
			frequency VARCHAR(50) NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP,
			next_occurrence TIMESTAMP NOT NULL,
			budget_id UUID REFERENCES budgets(id) ON DELETE SET NULL,
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			description VARCHAR(255) NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			type VARCHAR(50) NOT NULL DEFAULT 'EXPENSE',
			date TIMESTAMP NOT NULL,
			budget_id UUID REFERENCES budgets(id) ON DELETE SET NULL,
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			recurring_id UUID REFERENCES recurring_expenses(id) ON DELETE SET NULL,
			tags TEXT[] DEFAULT '{}',
			attachments TEXT[] DEFAULT '{}',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS invitations (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'MEMBER',
			invited_by UUID REFERENCES users(id),
			token VARCHAR(255) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			used_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			household_id UUID REFERENCES households(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			action VARCHAR(100) NOT NULL,
			changes JSONB,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_household_members_household_id ON household_members(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_household_members_user_id ON household_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_household_id ON categories(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_household_id ON budgets(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_budget_categories_budget_id ON budget_categories(budget_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_household_id ON expenses(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_budget_id ON expenses(budget_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_next_occurrence ON recurring_expenses(next_occurrence)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(email)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_token ON invitations(token)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_household_id ON audit_logs(household_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
