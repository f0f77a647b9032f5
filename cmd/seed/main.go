package main

import (
	"context"
	"flag"
	"log"
	"time"

	"qbwc-sync-be/internal/config"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/database"
	"qbwc-sync-be/pkg/qbxml"

	"github.com/shopspring/decimal"
)

func main() {
	code := flag.String("code", "DEMO", "company code; the Web Connector logs in as sync-<code>")
	name := flag.String("name", "Demo Company", "company display name")
	file := flag.String("file", "", "QuickBooks company file path sent on authenticate")
	flag.Parse()

	cfg := config.Load()
	db, err := database.OpenGorm(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	company, err := uow.CompanyRepository().FindByCode(ctx, *code)
	if err != nil {
		log.Fatalf("Failed to look up company: %v", err)
	}
	if company == nil {
		company = &entity.Company{Code: *code, Name: *name, CompanyFilePath: *file, IsActive: true}
		if err := uow.CompanyRepository().Create(ctx, company); err != nil {
			log.Fatalf("Failed to create company: %v", err)
		}
		log.Printf("Created company %s (%s)", company.Code, company.Id)
	} else {
		log.Printf("Company %s already exists (%s)", company.Code, company.Id)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	seeds := []*entity.Transaction{
		{
			ExternalType: qbxml.TxnTypeCheck,
			AccountName:  "Checking",
			Payee:        "City Power",
			RefNumber:    "5001",
			Memo:         "Monthly power",
			Amount:       decimal.RequireFromString("245.10"),
			TxnDate:      today.AddDate(0, 0, -3),
			Lines: entity.TransactionLines{Expense: []qbxml.ExpenseLine{
				{Account: qbxml.Ref{FullName: "Utilities"}, Amount: decimal.RequireFromString("245.10")},
			}},
		},
		{
			ExternalType: qbxml.TxnTypeBill,
			AccountName:  "Accounts Payable",
			Payee:        "Paper Co",
			RefNumber:    "INV-88",
			Amount:       decimal.RequireFromString("80.00"),
			TxnDate:      today.AddDate(0, 0, -1),
			Lines: entity.TransactionLines{Expense: []qbxml.ExpenseLine{
				{Account: qbxml.Ref{FullName: "Office Supplies"}, Amount: decimal.RequireFromString("80.00"), Memo: "Printer paper"},
			}},
		},
		{
			ExternalType: qbxml.TxnTypeCreditCardCharge,
			AccountName:  "Company Card",
			Payee:        "Cloud Hosting",
			Amount:       decimal.RequireFromString("19.99"),
			TxnDate:      today,
			Lines: entity.TransactionLines{Expense: []qbxml.ExpenseLine{
				{Account: qbxml.Ref{FullName: "Software"}, Amount: decimal.RequireFromString("19.99")},
			}},
		},
	}

	for _, txn := range seeds {
		txn.CompanyId = company.Id
		txn.NeedsPush = true
		if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
			log.Fatalf("Failed to seed transaction: %v", err)
		}
	}
	log.Printf("Seeded %d local transactions needing push", len(seeds))
}
