// Package models contains the gorm persistence models of the bank feed tables.
// Domain entities stay free of ORM tags; repositories convert with ToDomain
// and FromDomain.
//
// The column layout mirrors migrations/*.sql. AutoMigrate over All() is only
// used for sqlite (tests and local development); postgres schemas are owned
// by golang-migrate.
package models

// All returns every model, in dependency order
func All() []any {
	return []any{
		&JournalModel{},
		&BankAccountMappingModel{},
		&StatementLineModel{},
		&ConfigParameterModel{},
	}
}
