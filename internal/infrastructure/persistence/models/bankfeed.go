package models

import (
	"time"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalModel is the persistence model for bankfeed.Journal
type JournalModel struct {
	BaseModel
	CompanyID         uuid.UUID            `gorm:"type:uuid;not null;index:idx_journals_company"`
	Name              string               `gorm:"type:varchar(128);not null"`
	Code              string               `gorm:"type:varchar(16);not null;default:''"`
	Type              bankfeed.JournalType `gorm:"type:varchar(16);not null"`
	BankAccountNumber string               `gorm:"type:varchar(64);not null;default:''"`
	Active            bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (JournalModel) TableName() string {
	return "journals"
}

// ToDomain converts the model to a domain Journal
func (m *JournalModel) ToDomain() *bankfeed.Journal {
	return &bankfeed.Journal{
		BaseEntity:        m.BaseModel.ToDomain(),
		CompanyID:         m.CompanyID,
		Name:              m.Name,
		Code:              m.Code,
		Type:              m.Type,
		BankAccountNumber: m.BankAccountNumber,
		Active:            m.Active,
	}
}

// FromDomain populates the model from a domain Journal
func (m *JournalModel) FromDomain(j *bankfeed.Journal) {
	m.FromDomainBaseEntity(j.BaseEntity)
	m.CompanyID = j.CompanyID
	m.Name = j.Name
	m.Code = j.Code
	m.Type = j.Type
	m.BankAccountNumber = j.BankAccountNumber
	m.Active = j.Active
}

// BankAccountMappingModel is the persistence model for bankfeed.BankAccountMapping
type BankAccountMappingModel struct {
	BaseModel
	ExternalAccountIdentifier string    `gorm:"type:varchar(128);not null;uniqueIndex:uniq_ext_acc_company,priority:1"`
	JournalID                 uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_ext_acc_company,priority:2"`
	Active                    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BankAccountMappingModel) TableName() string {
	return "bank_account_mappings"
}

// ToDomain converts the model to a domain BankAccountMapping
func (m *BankAccountMappingModel) ToDomain() *bankfeed.BankAccountMapping {
	return &bankfeed.BankAccountMapping{
		BaseEntity:                m.BaseModel.ToDomain(),
		ExternalAccountIdentifier: m.ExternalAccountIdentifier,
		JournalID:                 m.JournalID,
		CompanyID:                 m.CompanyID,
		Active:                    m.Active,
	}
}

// FromDomain populates the model from a domain BankAccountMapping
func (m *BankAccountMappingModel) FromDomain(b *bankfeed.BankAccountMapping) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ExternalAccountIdentifier = b.ExternalAccountIdentifier
	m.JournalID = b.JournalID
	m.CompanyID = b.CompanyID
	m.Active = b.Active
}

// StatementLineModel is the persistence model for bankfeed.StatementLine
type StatementLineModel struct {
	BaseModel
	JournalID         uuid.UUID       `gorm:"type:uuid;not null"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null"`
	Date              time.Time       `gorm:"type:date;not null"`
	PaymentRef        string          `gorm:"type:text;not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Source            string          `gorm:"type:varchar(16);not null"`
	ExternalID        string          `gorm:"type:varchar(64);not null;uniqueIndex:uniq_tw_casso_id"`
	Reference         string          `gorm:"column:tid;type:varchar(128);not null;default:''"`
	AccountIdentifier string          `gorm:"type:varchar(128);not null;default:''"`
	BankAbbreviation  string          `gorm:"type:varchar(32);not null;default:''"`
	BankName          string          `gorm:"type:varchar(128);not null;default:''"`
	CounterAccount    string          `gorm:"type:varchar(64);not null;default:''"`
	VirtualAccount    string          `gorm:"type:varchar(64);not null;default:''"`
	AccountNumber     string          `gorm:"type:varchar(64);not null;default:''"`
	BankSubAccountID  string          `gorm:"column:bank_sub_acc_id;type:varchar(64);not null;default:''"`
}

// TableName returns the table name for GORM
func (StatementLineModel) TableName() string {
	return "bank_statement_lines"
}

// ToDomain converts the model to a domain StatementLine
func (m *StatementLineModel) ToDomain() *bankfeed.StatementLine {
	return &bankfeed.StatementLine{
		BaseEntity:        m.BaseModel.ToDomain(),
		JournalID:         m.JournalID,
		CompanyID:         m.CompanyID,
		Date:              bankfeed.DateOf(m.Date),
		PaymentRef:        m.PaymentRef,
		Amount:            m.Amount,
		Source:            m.Source,
		ExternalID:        m.ExternalID,
		Reference:         m.Reference,
		AccountIdentifier: m.AccountIdentifier,
		BankAbbreviation:  m.BankAbbreviation,
		BankName:          m.BankName,
		CounterAccount:    m.CounterAccount,
		VirtualAccount:    m.VirtualAccount,
		AccountNumber:     m.AccountNumber,
		BankSubAccountID:  m.BankSubAccountID,
	}
}

// StatementLineModelFromDomain creates a model from a domain StatementLine
func StatementLineModelFromDomain(l *bankfeed.StatementLine) *StatementLineModel {
	m := &StatementLineModel{
		JournalID:         l.JournalID,
		CompanyID:         l.CompanyID,
		Date:              l.Date,
		PaymentRef:        l.PaymentRef,
		Amount:            l.Amount,
		Source:            l.Source,
		ExternalID:        l.ExternalID,
		Reference:         l.Reference,
		AccountIdentifier: l.AccountIdentifier,
		BankAbbreviation:  l.BankAbbreviation,
		BankName:          l.BankName,
		CounterAccount:    l.CounterAccount,
		VirtualAccount:    l.VirtualAccount,
		AccountNumber:     l.AccountNumber,
		BankSubAccountID:  l.BankSubAccountID,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ConfigParameterModel is one operator-managed setting
type ConfigParameterModel struct {
	Key       string    `gorm:"column:key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConfigParameterModel) TableName() string {
	return "config_parameters"
}
